package optimize

import "github.com/sail-lang/sailc/internal/pstr"

// latticeKind is the four-point abstract domain CCP evaluates under: Bottom
// (unreached/unknown yet), a known Int, a known Str, and Top (statically
// unknowable — e.g. a call result or a parameter).
type latticeKind uint8

const (
	latBottom latticeKind = iota
	latInt
	latStr
	latTop
)

type value struct {
	kind latticeKind
	i    int32
	s    pstr.PStr
}

var topValue = value{kind: latTop}
var bottomValue = value{kind: latBottom}

func intValue(i int32) value  { return value{kind: latInt, i: i} }
func strValue(s pstr.PStr) value { return value{kind: latStr, s: s} }

// meet joins two abstract values from different incoming branches: Bottom
// is the identity (the other side is returned), equal known values stay
// known, and anything else collapses to Top, since CCP only tracks
// environment entries it can prove a single outcome for.
func meet(a, b value) value {
	if a.kind == latBottom {
		return b
	}

	if b.kind == latBottom {
		return a
	}

	if a.kind != b.kind {
		return topValue
	}

	switch a.kind {
	case latInt:
		if a.i == b.i {
			return a
		}

		return topValue
	case latStr:
		if a.s == b.s {
			return a
		}

		return topValue
	default:
		return topValue
	}
}

// env is the per-point abstract environment CCP threads through a function
// body, mapping a live temporary's name to its known value (or Top).
type env map[pstr.PStr]value

func (e env) get(name pstr.PStr) value {
	v, ok := e[name]
	if !ok {
		return topValue
	}

	return v
}

func (e env) clone() env {
	out := make(env, len(e))
	for k, v := range e {
		out[k] = v
	}

	return out
}
