package casepipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsFirstApplicableCase(t *testing.T) {
	b := NewBuilder(
		Case[int, string, struct{}]{
			Name:       "even",
			Applicable: func(in int, _ struct{}) bool { return in%2 == 0 },
			Build:      func(in int, _ struct{}) (string, error) { return "even", nil },
		},
		Case[int, string, struct{}]{
			Name:       "odd",
			Applicable: func(in int, _ struct{}) bool { return in%2 == 1 },
			Build:      func(in int, _ struct{}) (string, error) { return "odd", nil },
		},
	)
	out, err := b.Run(4, struct{}{}, "4")
	require.NoError(t, err)
	assert.Equal(t, "even", out)

	out, err = b.Run(3, struct{}{}, "3")
	require.NoError(t, err)
	assert.Equal(t, "odd", out)
}

func TestRunAggregatesReasonsWhenNoneApply(t *testing.T) {
	b := NewBuilder(
		Case[int, string, struct{}]{
			Name:       "never",
			Applicable: func(in int, _ struct{}) bool { return false },
			Build:      func(in int, _ struct{}) (string, error) { return "", nil },
		},
	)
	_, err := b.Run(1, struct{}{}, "1")
	require.Error(t, err)
	var unsupported *UnsupportedInputError
	require.ErrorAs(t, err, &unsupported)
	assert.Contains(t, unsupported.Reasons[0], "never")
}

func TestMemoPlaceholderBeforeRecursion(t *testing.T) {
	memo := NewMemo[string, int]()
	memo.Store("a", -1) // placeholder
	assert.True(t, memo.Has("a"))
	v, ok := memo.Load("a")
	require.True(t, ok)
	assert.Equal(t, -1, v)
	memo.Store("a", 42)
	v, ok = memo.Load("a")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}
