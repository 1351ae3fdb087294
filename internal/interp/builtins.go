package interp

import (
	"strconv"

	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/pstr"
)

// callBuiltin dispatches one of the fixed runtime primitives every
// compiled program can call: heap management, string<->int conversion,
// concatenation, println, panic, and the no-op reference-count hooks (this
// interpreter never frees by reference count, only by explicit free).
func (p *program) callBuiltin(name pstr.PStr, args []int32) int32 {
	switch name {
	case pstr.Malloc:
		return p.mem.Malloc(args[0])

	case pstr.Free:
		p.mem.Free(args[0])
		return 0

	case pstr.ToInt:
		s := p.mem.GetString(args[0])

		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			panic(&Trap{Message: "toInt: \"" + s + "\" is not an integer"})
		}

		return int32(n)

	case pstr.FromInt:
		return p.mem.InternString(strconv.Itoa(int(args[0])))

	case pstr.Concat:
		return p.mem.InternString(p.mem.GetString(args[0]) + p.mem.GetString(args[1]))

	case pstr.Println:
		p.mem.Println(p.mem.GetString(args[0]))
		return 0

	case pstr.Panic:
		panic(&Trap{Message: p.mem.GetString(args[0])})

	case pstr.IncRef, pstr.DecRef:
		return 0

	default:
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "unrecognized builtin %d", name))
		return 0
	}
}
