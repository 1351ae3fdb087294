// Package irfmt offers debug-dump helpers for IR trees, used by tests and
// by the optimizer's pass reports. Built on github.com/davecgh/go-spew so
// dumps are readable structural trees rather than Go's default %#v noise.
package irfmt

import "github.com/davecgh/go-spew/spew"

var config = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders v as an indented structural tree, for debug logging and
// test failure output.
func Dump(v any) string {
	return config.Sdump(v)
}
