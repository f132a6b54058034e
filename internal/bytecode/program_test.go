package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "LoadField", OpLoadField.String())
	require.Equal(t, "CallLLM", OpCallLLM.String())
	require.Equal(t, "Unknown", Op(999).String())
}

func TestProgramBounds(t *testing.T) {
	t.Parallel()
	p := &Program{Instructions: []Instruction{{Op: OpReturn}}}
	require.Equal(t, 1, p.Len())
	require.True(t, p.InBounds(0))
	require.False(t, p.InBounds(1))
	require.False(t, p.InBounds(-1))
}
