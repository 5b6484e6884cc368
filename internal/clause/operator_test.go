package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorArity(t *testing.T) {
	testCases := []struct {
		op    Operator
		arity int
	}{
		{OpBetween, 2},
		{OpGreaterThan, 1},
		{OpGreaterThanEqual, 1},
		{OpLessThan, 1},
		{OpLessThanEqual, 1},
		{OpIsNull, 0},
		{OpIsNotNull, 0},
		{OpIn, 1},
		{OpNotIn, 1},
		{OpLike, 1},
		{OpNotLike, 1},
		{OpEquals, 1},
		{OpNotEquals, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			assert.Equal(t, tc.arity, tc.op.Arity())
		})
	}
}

func TestParseOperator_RoundTrip(t *testing.T) {
	for op := OpBetween; op <= OpNotEquals; op++ {
		parsed, err := ParseOperator(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, parsed)
	}
}

func TestParseOperator_Unknown(t *testing.T) {
	_, err := ParseOperator("near")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "near")

	_, err = ParseOperator("")
	require.Error(t, err)
}

func TestOperatorString_OutOfRange(t *testing.T) {
	assert.Equal(t, "Operator(99)", Operator(99).String())
}

func TestParseCaseMode(t *testing.T) {
	testCases := []struct {
		input string
		want  CaseMode
	}{
		{"", CaseNever},
		{"never", CaseNever},
		{"always", CaseAlways},
		{"whenPossible", CaseWhenPossible},
	}

	for _, tc := range testCases {
		t.Run("input_"+tc.input, func(t *testing.T) {
			got, err := ParseCaseMode(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCaseMode_Unknown(t *testing.T) {
	_, err := ParseCaseMode("ALWAYS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALWAYS")
}

func TestCaseModeString(t *testing.T) {
	assert.Equal(t, "never", CaseNever.String())
	assert.Equal(t, "always", CaseAlways.String())
	assert.Equal(t, "whenPossible", CaseWhenPossible.String())
}
