package irfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDumpIncludesFieldNames(t *testing.T) {
	type pair struct {
		Left  int
		Right string
	}

	out := Dump(pair{Left: 1, Right: "x"})
	assert.Contains(t, out, "Left")
	assert.Contains(t, out, "Right")
}
