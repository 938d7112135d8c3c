package tree

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestObject_Set(t *testing.T) {
	object := NewObject()
	object.Set("z", NewInt(1))
	object.Set("a", NewString("abc"))
	object.Set("m", NewBool(true))
	assert.Equal(t, []string{"z", "a", "m"}, object.Keys())
	assert.Equal(t, 3, object.Len())

	object.Set("a", NewInt(2))
	assert.Equal(t, []string{"z", "a", "m"}, object.Keys(), "replacing keeps insertion order")
	number, ok := object.Member("a").(*Number)
	assert.True(t, ok)
	assert.Equal(t, int64(2), number.Int64())

	assert.True(t, object.Has("z"))
	assert.False(t, object.Has("missing"))
	assert.Nil(t, object.Member("missing"))
}

func TestArray_At(t *testing.T) {
	array := NewArray()
	array.Append(NewInt(1))
	array.Append(Null())
	assert.Equal(t, 2, array.Len())
	assert.Equal(t, KindNull, array.At(1).Kind())
	assert.Nil(t, array.At(5))
	assert.Nil(t, array.At(-1))
}

func TestNumber_Int64(t *testing.T) {
	assert.Equal(t, int64(12), NewInt(12).Int64())
	assert.True(t, NewInt(12).IsInt())
	assert.Equal(t, int64(3), NewFloat(3.7).Int64())
	assert.False(t, NewFloat(3.7).IsInt())
	assert.Equal(t, 3.7, NewFloat(3.7).Float64())
}

func TestParse(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expectError bool
		validate    func(t *testing.T, node Node)
	}{
		{
			description: "object with mixed members",
			input:       `{"id": 1, "name": "abc", "active": true, "score": 1.5, "note": null}`,
			validate: func(t *testing.T, node Node) {
				object, ok := node.(*Object)
				if !assert.True(t, ok) {
					return
				}
				assert.Equal(t, int64(1), object.Member("id").(*Number).Int64())
				assert.True(t, object.Member("id").(*Number).IsInt())
				assert.Equal(t, "abc", object.Member("name").(*String).Value())
				assert.True(t, object.Member("active").(*Bool).Value())
				assert.Equal(t, 1.5, object.Member("score").(*Number).Float64())
				assert.False(t, object.Member("score").(*Number).IsInt())
				assert.Equal(t, KindNull, object.Member("note").Kind())
			},
		},
		{
			description: "nested object and array",
			input:       `{"items": [{"v": 1}, {"v": 2}], "tags": ["a", "b"]}`,
			validate: func(t *testing.T, node Node) {
				object := node.(*Object)
				items := object.Member("items").(*Array)
				assert.Equal(t, 2, items.Len())
				assert.Equal(t, int64(2), items.At(1).(*Object).Member("v").(*Number).Int64())
				tags := object.Member("tags").(*Array)
				assert.Equal(t, "b", tags.At(1).(*String).Value())
			},
		},
		{
			description: "top level array",
			input:       `[1, null, "x"]`,
			validate: func(t *testing.T, node Node) {
				array, ok := node.(*Array)
				if !assert.True(t, ok) {
					return
				}
				assert.Equal(t, 3, array.Len())
				assert.Equal(t, KindNull, array.At(1).Kind())
			},
		},
		{
			description: "top level scalars",
			input:       `"abc"`,
			validate: func(t *testing.T, node Node) {
				assert.Equal(t, "abc", node.(*String).Value())
			},
		},
		{
			description: "top level null",
			input:       `null`,
			validate: func(t *testing.T, node Node) {
				assert.Equal(t, KindNull, node.Kind())
			},
		},
		{
			description: "top level number",
			input:       ` 42 `,
			validate: func(t *testing.T, node Node) {
				assert.Equal(t, int64(42), node.(*Number).Int64())
			},
		},
		{
			description: "integers beyond the float64 mantissa keep their value",
			input:       `{"big": 9007199254740993, "items": [9223372036854775807]}`,
			validate: func(t *testing.T, node Node) {
				object := node.(*Object)
				big := object.Member("big").(*Number)
				assert.True(t, big.IsInt())
				assert.Equal(t, int64(9007199254740993), big.Int64())
				items := object.Member("items").(*Array)
				assert.Equal(t, int64(9223372036854775807), items.At(0).(*Number).Int64())
			},
		},
		{
			description: "negative integer",
			input:       `-42`,
			validate: func(t *testing.T, node Node) {
				number := node.(*Number)
				assert.True(t, number.IsInt())
				assert.Equal(t, int64(-42), number.Int64())
			},
		},
		{
			description: "exponent token is a float",
			input:       `1e3`,
			validate: func(t *testing.T, node Node) {
				number := node.(*Number)
				assert.False(t, number.IsInt())
				assert.Equal(t, float64(1000), number.Float64())
			},
		},
		{
			description: "malformed input",
			input:       `{"id": `,
			expectError: true,
		},
		{
			description: "invalid null literal",
			input:       `nonsense`,
			expectError: true,
		},
		{
			description: "invalid number token",
			input:       `12ab`,
			expectError: true,
		},
		{
			description: "empty input",
			input:       ``,
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		node, err := Parse([]byte(testCase.input))
		if testCase.expectError {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		testCase.validate(t, node)
	}
}

func TestMarshal(t *testing.T) {
	var testCases = []struct {
		description string
		node        func() Node
		expect      string
	}{
		{
			description: "object keeps insertion order",
			node: func() Node {
				object := NewObject()
				object.Set("z", NewInt(1))
				object.Set("a", NewString("abc"))
				return object
			},
			expect: `{"z":1,"a":"abc"}`,
		},
		{
			description: "array with null",
			node: func() Node {
				array := NewArray()
				array.Append(NewInt(1))
				array.Append(Null())
				array.Append(NewBool(false))
				return array
			},
			expect: `[1,null,false]`,
		},
		{
			description: "empty object",
			node: func() Node {
				return NewObject()
			},
			expect: `{}`,
		},
		{
			description: "large integers are emitted verbatim",
			node: func() Node {
				object := NewObject()
				object.Set("big", NewInt(9007199254740993))
				array := NewArray()
				array.Append(NewInt(-9223372036854775808))
				object.Set("items", array)
				return object
			},
			expect: `{"big":9007199254740993,"items":[-9223372036854775808]}`,
		},
		{
			description: "nested",
			node: func() Node {
				inner := NewObject()
				inner.Set("v", NewFloat(1.5))
				object := NewObject()
				object.Set("item", inner)
				return object
			},
			expect: `{"item":{"v":1.5}}`,
		},
	}

	for _, testCase := range testCases {
		actual, err := Marshal(testCase.node())
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, string(actual), testCase.description)
	}
}

func TestParse_MarshalRoundTrip(t *testing.T) {
	input := `{"id":1,"name":"abc","items":[{"v":1},null],"score":1.5,"active":true}`
	node, err := Parse([]byte(input))
	if !assert.Nil(t, err) {
		return
	}
	actual, err := Marshal(node)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, input, string(actual))
}
