package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValueType(t *testing.T) {
	testCases := []struct {
		input string
		want  ValueType
	}{
		{"text", Text},
		{"int", Int},
		{"bool", Bool},
		{"time", Time},
		{"blob", Blob},
		{"list", ValueType{Kind: KindList}},
		{"list<text>", ListOf(KindText)},
		{"list<int>", ListOf(KindInt)},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseValueType(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.input, got.String())
		})
	}
}

func TestParseValueType_Invalid(t *testing.T) {
	for _, input := range []string{"float", "list<float>", "list<list>", "list<>", ""} {
		t.Run("input_"+input, func(t *testing.T) {
			_, err := ParseValueType(input)
			require.Error(t, err)
		})
	}
}

func TestAssignableTo(t *testing.T) {
	testCases := []struct {
		name string
		from ValueType
		to   ValueType
		want bool
	}{
		{"text to text", Text, Text, true},
		{"text to int", Text, Int, false},
		{"int to text", Int, Text, false},
		{"typed list to any list", ListOf(KindText), ValueType{Kind: KindList}, true},
		{"any list to any list", ValueType{Kind: KindList}, ValueType{Kind: KindList}, true},
		{"typed list to same element", ListOf(KindInt), ListOf(KindInt), true},
		{"typed list to other element", ListOf(KindInt), ListOf(KindText), false},
		{"scalar to list", Text, ValueType{Kind: KindList}, false},
		{"list to scalar", ListOf(KindText), Text, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.AssignableTo(tc.to))
		})
	}
}

func TestValueTypeIsZero(t *testing.T) {
	assert.True(t, ValueType{}.IsZero())
	assert.False(t, Text.IsZero())
	assert.False(t, ValueType{Kind: KindList}.IsZero())
}

func TestPlaceholderString(t *testing.T) {
	named := Placeholder{Ordinal: 1, Name: "minAge", Type: Int}
	assert.Equal(t, "?1(minAge int)", named.String())

	anonymous := Placeholder{Ordinal: 3, Type: ListOf(KindText)}
	assert.Equal(t, "?3(list<text>)", anonymous.String())
}

func TestParsePath(t *testing.T) {
	assert.Equal(t, Path{"customer", "address", "city"}, ParsePath("customer.address.city"))
	assert.Equal(t, Path{"name"}, ParsePath("name"))
	assert.Nil(t, ParsePath(""))
}

func TestPathLeaf(t *testing.T) {
	assert.Equal(t, "city", ParsePath("customer.address.city").Leaf())
	assert.Equal(t, "name", ParsePath("name").Leaf())
	assert.Equal(t, "", Path(nil).Leaf())
}
