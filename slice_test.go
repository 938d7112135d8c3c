package structdiff

import (
	"github.com/stretchr/testify/assert"
	"testing"

	"github.com/viant/structdiff/tree"
)

func TestCodec_DiffSlice(t *testing.T) {
	var testCases = []struct {
		description string
		values      interface{}
		baseline    interface{}
		expect      string
		expectError bool
	}{
		{
			description: "elements diff against their baseline counterparts",
			values:      []point{{X: 1, Y: 2}, {X: 3, Y: 4}},
			baseline:    []point{{X: 1, Y: 2}, {X: 3, Y: 9}},
			expect:      `[{},{"y":4}]`,
		},
		{
			description: "elements past the baseline length are emitted in full",
			values:      []point{{X: 1}, {X: 2}},
			baseline:    []point{{X: 1}},
			expect:      `[{},{"x":2,"y":0}]`,
		},
		{
			description: "nil baseline emits every element in full",
			values:      []point{{X: 1}},
			expect:      `[{"x":1,"y":0}]`,
		},
		{
			description: "scalar elements",
			values:      []int{1, 2, 3},
			expect:      `[1,2,3]`,
		},
		{
			description: "baseline of a different element type",
			values:      []point{{X: 1}},
			baseline:    []device{{ID: 1}},
			expectError: true,
		},
		{
			description: "values must be a slice",
			values:      point{X: 1},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		node, err := DiffSlice(testCase.values, testCase.baseline)
		if testCase.expectError {
			assert.ErrorIs(t, err, ErrInvalidParam, testCase.description)
			continue
		}
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		actual, err := tree.Marshal(node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, string(actual), testCase.description)
	}
}

func TestCodec_DiffSlice_SharedPointee(t *testing.T) {
	type holder struct {
		Peer *point `json:"peer"`
	}
	shared := &point{X: 1}
	node, err := DiffSlice([]holder{{Peer: shared}, {Peer: shared}}, nil)
	if !assert.Nil(t, err) {
		return
	}
	actual, err := tree.Marshal(node)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, `[{"peer":{"x":1,"y":0}},{"peer":{"x":1,"y":0}}]`, string(actual),
		"a pointee aliased across elements is emitted for each of them")
}

func TestCodec_DiffSlice_Nil(t *testing.T) {
	node, err := DiffSlice(nil, nil)
	assert.Nil(t, err)
	assert.Nil(t, node)
}

func TestCodec_OverlaySlice(t *testing.T) {
	parse := func(input string) tree.Node {
		node, err := tree.Parse([]byte(input))
		assert.Nil(t, err)
		return node
	}

	var testCases = []struct {
		description string
		input       string
		baseline    []point
		dest        []point
		expect      []point
	}{
		{
			description: "elements overlay their baseline counterparts",
			input:       `[{"x": 9}, {"y": 9}]`,
			baseline:    []point{{X: 1, Y: 2}, {X: 3, Y: 4}},
			dest:        make([]point, 2),
			expect:      []point{{X: 9, Y: 2}, {X: 3, Y: 9}},
		},
		{
			description: "longer input is silently truncated to the destination capacity",
			input:       `[{"x": 1}, {"x": 2}, {"x": 3}]`,
			dest:        make([]point, 2),
			expect:      []point{{X: 1}, {X: 2}},
		},
		{
			description: "shorter input backfills the remainder from the baseline",
			input:       `[{"x": 9}]`,
			baseline:    []point{{X: 1}, {X: 2}, {X: 3}},
			dest:        make([]point, 3),
			expect:      []point{{X: 9}, {X: 2}, {X: 3}},
		},
		{
			description: "null elements keep their baseline counterparts",
			input:       `[null, {"x": 9}]`,
			baseline:    []point{{X: 1}, {X: 2}},
			dest:        make([]point, 2),
			expect:      []point{{X: 1}, {X: 9}},
		},
		{
			description: "without baseline the remainder stays zero",
			input:       `[{"x": 9}]`,
			dest:        make([]point, 2),
			expect:      []point{{X: 9}, {}},
		},
	}

	for _, testCase := range testCases {
		err := OverlaySlice(parse(testCase.input), testCase.baseline, testCase.dest)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, testCase.dest, testCase.description)
	}
}

func TestCodec_OverlaySlice_Scalars(t *testing.T) {
	dest := make([]int, 3)
	node, err := tree.Parse([]byte(`[7, 8]`))
	if !assert.Nil(t, err) {
		return
	}
	err = OverlaySlice(node, []int{1, 2, 3}, dest)
	assert.Nil(t, err)
	assert.Equal(t, []int{7, 8, 3}, dest)
}

func TestCodec_OverlaySlice_Errors(t *testing.T) {
	dest := make([]point, 2)

	err := OverlaySlice(nil, nil, dest)
	assert.ErrorIs(t, err, ErrInvalidParam, "nil node")

	err = OverlaySlice(tree.NewArray(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidParam, "nil dest")

	err = OverlaySlice(tree.NewArray(), nil, point{})
	assert.ErrorIs(t, err, ErrInvalidParam, "dest must be a slice")

	err = OverlaySlice(tree.NewObject(), nil, dest)
	assert.ErrorIs(t, err, ErrParse, "node must be an array")

	err = OverlaySlice(tree.NewArray(), []device{}, dest)
	assert.ErrorIs(t, err, ErrInvalidParam, "baseline of a different element type")

	node, err := tree.Parse([]byte(`[{"x": 1}, 5]`))
	if !assert.Nil(t, err) {
		return
	}
	err = OverlaySlice(node, nil, dest)
	assert.ErrorIs(t, err, ErrParse, "element of the wrong shape aborts the call")

	intDest := make([]int, 2)
	node, err = tree.Parse([]byte(`["a", 1]`))
	if !assert.Nil(t, err) {
		return
	}
	err = OverlaySlice(node, nil, intDest)
	assert.ErrorIs(t, err, ErrParse, "scalar element of the wrong kind aborts the call")
}
