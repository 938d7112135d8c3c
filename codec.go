package structdiff

import (
	"reflect"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/viant/tagly/format/text"
	"github.com/viant/xunsafe"

	"github.com/viant/structdiff/tree"
)

// DefaultMaxDepth bounds pointer recursion unless overridden with WithMaxDepth
const DefaultMaxDepth = 64

// DefaultTimeLayout is the layout used for time fields unless overridden with WithTimeLayout
const DefaultTimeLayout = time.RFC3339

//Codec converts instances of registered types to and from the value tree;
//descriptors are built once per type and safe for concurrent use
type Codec struct {
	types      sync.Map //reflect.Type -> *Type
	tagName    string
	caseFormat text.CaseFormat
	maxDepth   int
	allocator  Allocator
	timeLayout string
}

//New creates a codec
func New(opts ...Option) *Codec {
	ret := &Codec{
		tagName:    TagName,
		maxDepth:   DefaultMaxDepth,
		allocator:  stdAllocator{},
		timeLayout: DefaultTimeLayout,
	}
	Options(opts).Apply(ret)
	return ret
}

var defaultCodec = New()

//Diff serializes value against an optional baseline with the default codec
func Diff(value, baseline interface{}) (tree.Node, error) {
	return defaultCodec.Diff(value, baseline)
}

//Overlay decodes node over baseline into dest with the default codec
func Overlay(node tree.Node, baseline, dest interface{}) error {
	return defaultCodec.Overlay(node, baseline, dest)
}

//Marshal serializes value against an optional baseline to JSON bytes with the default codec
func Marshal(value, baseline interface{}) ([]byte, error) {
	return defaultCodec.Marshal(value, baseline)
}

//Unmarshal decodes JSON bytes over baseline into dest with the default codec
func Unmarshal(data []byte, baseline, dest interface{}) error {
	return defaultCodec.Unmarshal(data, baseline, dest)
}

//Marshal serializes value against an optional baseline to JSON bytes
func (c *Codec) Marshal(value, baseline interface{}) ([]byte, error) {
	node, err := c.Diff(value, baseline)
	if err != nil {
		return nil, err
	}
	return tree.Marshal(node)
}

//Unmarshal decodes JSON bytes over baseline into dest
func (c *Codec) Unmarshal(data []byte, baseline, dest interface{}) error {
	node, err := tree.Parse(data)
	if err != nil {
		return errors.Wrapf(ErrParse, "%v", err)
	}
	return c.Overlay(node, baseline, dest)
}

//TypeOf returns the descriptor for the supplied value's type
func (c *Codec) TypeOf(value interface{}) (*Type, error) {
	if value == nil {
		return nil, errors.Wrap(ErrInvalidParam, "value was nil")
	}
	return c.typeFor(derefType(reflect.TypeOf(value)))
}

func derefType(rType reflect.Type) reflect.Type {
	if rType.Kind() == reflect.Ptr {
		return rType.Elem()
	}
	return rType
}

// instancePointer returns the descriptor type and data pointer for a value
// supplied either as T or *T; ok is false for a nil value or nil pointer
func instancePointer(value interface{}) (reflect.Type, unsafe.Pointer, bool) {
	if value == nil {
		return nil, nil, false
	}
	rType := reflect.TypeOf(value)
	if rType.Kind() == reflect.Ptr {
		if reflect.ValueOf(value).IsNil() {
			return rType.Elem(), nil, false
		}
		return rType.Elem(), xunsafe.AsPointer(value), true
	}
	return rType, xunsafe.AsPointer(value), true
}
