package structdiff

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/viant/structdiff/tree"
)

//DiffSlice serializes a slice element-wise with the default codec
func DiffSlice(values, baseline interface{}) (tree.Node, error) {
	return defaultCodec.DiffSlice(values, baseline)
}

//OverlaySlice decodes an array node into a fixed capacity slice with the default codec
func OverlaySlice(node tree.Node, baseline, dest interface{}) error {
	return defaultCodec.OverlaySlice(node, baseline, dest)
}

//DiffSlice serializes a slice of instances element-wise: element i is diffed
//against element i of the baseline slice, elements past the baseline length
//are emitted in full. A nil values slice yields a nil node.
func (c *Codec) DiffSlice(values, baseline interface{}) (tree.Node, error) {
	if values == nil {
		return nil, nil
	}
	valuesValue := reflect.ValueOf(values)
	if valuesValue.Kind() != reflect.Slice {
		return nil, errors.Wrapf(ErrInvalidParam, "expected slice, had %s", valuesValue.Type().String())
	}
	elemType := valuesValue.Type().Elem()
	t, err := c.typeFor(elemType)
	if err != nil {
		return nil, err
	}
	var baselineValue reflect.Value
	baselineLen := 0
	if baseline != nil {
		baselineValue = reflect.ValueOf(baseline)
		if baselineValue.Kind() != reflect.Slice || baselineValue.Type().Elem() != elemType {
			return nil, errors.Wrapf(ErrInvalidParam, "baseline type %s differs from %s", baselineValue.Type().String(), valuesValue.Type().String())
		}
		baselineLen = baselineValue.Len()
	}
	result := tree.NewArray()
	sess := c.newSession()
	for i := 0; i < valuesValue.Len(); i++ {
		addr := valuesValue.Index(i).Addr().UnsafePointer()
		var baseAddr unsafe.Pointer
		if i < baselineLen {
			baseAddr = baselineValue.Index(i).Addr().UnsafePointer()
		}
		node, err := sess.serialize(t, addr, baseAddr)
		if err != nil {
			return nil, err
		}
		if node == nil {
			node = tree.Null()
		}
		result.Append(node)
	}
	return result, nil
}

//OverlaySlice decodes an array node into dest, a slice of fixed capacity:
//min(len(node), len(dest)) elements are overlaid, a longer input is silently
//truncated and when a baseline slice is given the remaining destination
//elements are backfilled from it. Element decoding is strict, the first
//failing element aborts the call.
func (c *Codec) OverlaySlice(node tree.Node, baseline, dest interface{}) error {
	if node == nil {
		return errors.Wrap(ErrInvalidParam, "node was nil")
	}
	if dest == nil {
		return errors.Wrap(ErrInvalidParam, "dest was nil")
	}
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Slice {
		return errors.Wrapf(ErrInvalidParam, "expected slice dest, had %s", destValue.Type().String())
	}
	array, ok := node.(*tree.Array)
	if !ok {
		return errors.Wrapf(ErrParse, "expected array, had %s", node.Kind())
	}
	elemType := destValue.Type().Elem()
	t, err := c.typeFor(elemType)
	if err != nil {
		return err
	}
	var baselineValue reflect.Value
	baselineLen := 0
	if baseline != nil {
		baselineValue = reflect.ValueOf(baseline)
		if baselineValue.Kind() != reflect.Slice || baselineValue.Type().Elem() != elemType {
			return errors.Wrapf(ErrInvalidParam, "baseline type %s differs from %s", baselineValue.Type().String(), destValue.Type().String())
		}
		baselineLen = baselineValue.Len()
	}
	count := array.Len()
	if count > destValue.Len() {
		count = destValue.Len()
	}
	sess := c.newSession()
	for i := 0; i < count; i++ {
		destAddr := destValue.Index(i).Addr().UnsafePointer()
		var baseAddr unsafe.Pointer
		if i < baselineLen {
			baseAddr = baselineValue.Index(i).Addr().UnsafePointer()
			if t.kind == KindStruct || t.kind == KindUnion {
				//aggregates start from their baseline counterpart the way a
				//whole instance overlay does
				valueAt(elemType, destAddr).Set(valueAt(elemType, baseAddr))
				if t.kind == KindStruct && t.marker != nil {
					holder := t.marker.holder
					valueAt(holder.Type, holder.Pointer(destAddr)).Set(reflect.Zero(holder.Type))
				}
			}
		}
		member := array.At(i)
		if member == nil || member.Kind() == tree.KindNull {
			continue
		}
		if err := sess.overlayStrict(t, member, baseAddr, destAddr); err != nil {
			return err
		}
	}
	for i := count; i < destValue.Len(); i++ {
		if i >= baselineLen {
			break
		}
		destValue.Index(i).Set(baselineValue.Index(i))
	}
	return nil
}

// overlayStrict decodes one slice element rejecting a node of the wrong shape
func (s *session) overlayStrict(t *Type, node tree.Node, baseAddr, destAddr unsafe.Pointer) error {
	switch t.kind {
	case KindStruct, KindUnion, KindArray, KindSlice:
		return s.overlay(t, node, baseAddr, destAddr)
	case KindScalar:
		if !scalarMatches(t.rType, node) {
			return errors.Wrapf(ErrParse, "expected %s element, had %s", t.rType.String(), node.Kind())
		}
		s.codec.setScalar(t.rType, destAddr, node)
		return nil
	case KindText:
		text, ok := node.(*tree.String)
		if !ok {
			return errors.Wrapf(ErrParse, "expected string element, had %s", node.Kind())
		}
		setTextAt(destAddr, t.length, text.Value())
		return nil
	case KindPointer:
		field := &Field{typ: t}
		return s.overlayPointer(field, node, baseAddr, destAddr)
	}
	return errors.Errorf("unsupported kind: %v", t.kind)
}

// scalarMatches reports whether node shape is acceptable for scalar storage
func scalarMatches(rType reflect.Type, node tree.Node) bool {
	switch rType.Kind() {
	case reflect.Bool:
		return node.Kind() == tree.KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return node.Kind() == tree.KindNumber
	case reflect.String, reflect.Struct, reflect.Slice:
		return node.Kind() == tree.KindString
	}
	return false
}
