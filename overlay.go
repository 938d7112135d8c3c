package structdiff

import (
	"reflect"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/viant/xunsafe"

	"github.com/viant/structdiff/tree"
)

//Overlay decodes node into dest, a non nil pointer to an instance: the
//baseline, when given, is first copied wholesale into dest, then every field
//present in node is overlaid, allocating owned pointees on demand. Unknown
//keys are ignored. The first field level failure aborts the whole decode.
func (c *Codec) Overlay(node tree.Node, baseline, dest interface{}) error {
	if node == nil {
		return errors.Wrap(ErrInvalidParam, "node was nil")
	}
	if dest == nil {
		return errors.Wrap(ErrInvalidParam, "dest was nil")
	}
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.IsNil() {
		return errors.Wrap(ErrInvalidParam, "dest must be a non nil pointer")
	}
	rType := destValue.Type().Elem()
	t, err := c.typeFor(rType)
	if err != nil {
		return err
	}
	destPtr := xunsafe.AsPointer(dest)
	var basePtr unsafe.Pointer
	if baseline != nil {
		baseType, bPtr, ok := instancePointer(baseline)
		if baseType != rType {
			return errors.Wrapf(ErrInvalidParam, "baseline type %s differs from %s", baseType.String(), rType.String())
		}
		if ok {
			basePtr = bPtr
		}
	}
	sess := c.newSession()
	sess.mark(destPtr)
	return sess.overlay(t, node, basePtr, destPtr)
}

func (s *session) overlay(t *Type, node tree.Node, baseAddr, destAddr unsafe.Pointer) error {
	switch t.kind {
	case KindStruct:
		return s.overlayStruct(t, node, baseAddr, destAddr)
	case KindUnion:
		return s.overlayUnion(t, node, baseAddr, destAddr)
	case KindArray:
		array, ok := node.(*tree.Array)
		if !ok {
			return errors.Wrapf(ErrParse, "expected array for %s, had %s", t.rType.String(), node.Kind())
		}
		return s.overlayArray(t, array, baseAddr, destAddr)
	case KindSlice:
		array, ok := node.(*tree.Array)
		if !ok {
			return errors.Wrapf(ErrParse, "expected array for %s, had %s", t.rType.String(), node.Kind())
		}
		return s.overlaySliceValue(t, array, baseAddr, destAddr)
	case KindScalar:
		if node.Kind() != tree.KindNull {
			s.codec.setScalar(t.rType, destAddr, node)
		}
		return nil
	case KindText:
		if text, ok := node.(*tree.String); ok {
			setTextAt(destAddr, t.length, text.Value())
		}
		return nil
	case KindPointer:
		field := &Field{typ: t}
		return s.overlayPointer(field, node, baseAddr, destAddr)
	}
	return errors.Errorf("unsupported kind: %v", t.kind)
}

func (s *session) overlayStruct(t *Type, node tree.Node, baseAddr, destAddr unsafe.Pointer) error {
	object, ok := node.(*tree.Object)
	if !ok {
		return errors.Wrapf(ErrParse, "expected object for %s, had %s", t.rType.String(), node.Kind())
	}
	if baseAddr != nil {
		valueAt(t.rType, destAddr).Set(valueAt(t.rType, baseAddr))
		if t.marker != nil {
			//dest presence state starts fresh, never aliased from the baseline holder
			holder := t.marker.holder
			valueAt(holder.Type, holder.Pointer(destAddr)).Set(reflect.Zero(holder.Type))
		}
	}
	var present []*Field
	for _, field := range t.fields {
		member := object.Member(field.Name)
		if member == nil {
			continue
		}
		if err := s.overlayField(field, member, baseAddr, destAddr); err != nil {
			return err
		}
		present = append(present, field)
	}
	if t.marker != nil && len(present) > 0 {
		t.marker.EnsureHolder(destAddr)
		for _, field := range present {
			_ = t.marker.Set(destAddr, field.index, true)
		}
	}
	return nil
}

// overlayField decodes one named member into a field; a member whose node
// kind does not match a scalar, text, bits or aggregate field is skipped
// silently, preserving the tolerant per-field decode of the original protocol
func (s *session) overlayField(field *Field, member tree.Node, baseOwner, destOwner unsafe.Pointer) error {
	destAddr := field.xField.Pointer(destOwner)
	var baseAddr unsafe.Pointer
	if baseOwner != nil {
		baseAddr = field.xField.Pointer(baseOwner)
	}
	switch field.typ.kind {
	case KindScalar:
		if member.Kind() != tree.KindNull {
			s.codec.setScalar(field.typ.rType, destAddr, member)
		}
	case KindText:
		if text, ok := member.(*tree.String); ok {
			setTextAt(destAddr, field.typ.length, text.Value())
		}
	case KindBits:
		group, ok := member.(*tree.Object)
		if !ok {
			return nil
		}
		//sub-fields apply to their own bit ranges only, so application order
		//never matters and absent sub-fields keep the baseline range
		word := wordAt(field.typ.rType, destAddr)
		for _, bits := range field.bits {
			sub, ok := group.Member(bits.Name).(*tree.Number)
			if !ok {
				continue
			}
			word = insertBits(word, bits, uint64(sub.Int64()))
		}
		setWordAt(field.typ.rType, destAddr, word)
	case KindStruct, KindUnion:
		if _, ok := member.(*tree.Object); !ok {
			return nil
		}
		return s.overlay(field.typ, member, baseAddr, destAddr)
	case KindPointer:
		return s.overlayPointer(field, member, baseAddr, destAddr)
	case KindArray:
		array, ok := member.(*tree.Array)
		if !ok {
			return nil
		}
		return s.overlayArray(field.typ, array, baseAddr, destAddr)
	case KindSlice:
		array, ok := member.(*tree.Array)
		if !ok {
			return nil
		}
		return s.overlaySliceValue(field.typ, array, baseAddr, destAddr)
	}
	return nil
}

// overlayPointer materializes an owned pointee when the destination pointer
// is nil or still aliases the baseline pointee after the wholesale copy; the
// fresh pointee is seeded from the baseline pointee before being overlaid.
// An explicit null member keeps the current value; a non owning back
// reference is never followed nor allocated.
func (s *session) overlayPointer(field *Field, member tree.Node, baseAddr, destAddr unsafe.Pointer) error {
	if member.Kind() == tree.KindNull || field.ref {
		return nil
	}
	t := field.typ
	elem := t.elem
	var basePointee unsafe.Pointer
	if baseAddr != nil {
		basePointee = xunsafe.DerefPointer(baseAddr)
	}
	pointee := xunsafe.DerefPointer(destAddr)
	if pointee == nil || pointee == basePointee {
		newValue, err := s.codec.allocator.Allocate(elem.rType)
		if err != nil {
			return errors.Wrapf(ErrAlloc, "failed to allocate %s: %v", elem.rType.String(), err)
		}
		if basePointee != nil {
			newValue.Elem().Set(valueAt(elem.rType, basePointee))
		}
		valueAt(t.rType, destAddr).Set(newValue)
		pointee = newValue.UnsafePointer()
	}
	if !s.enter(pointee) {
		return nil
	}
	defer s.leave(pointee)
	switch elem.kind {
	case KindStruct, KindUnion:
		if _, ok := member.(*tree.Object); !ok {
			return nil
		}
		return s.overlay(elem, member, basePointee, pointee)
	case KindScalar:
		s.codec.setScalar(elem.rType, pointee, member)
		return nil
	case KindText:
		if text, ok := member.(*tree.String); ok {
			setTextAt(pointee, elem.length, text.Value())
		}
		return nil
	}
	return s.overlay(elem, member, basePointee, pointee)
}

func (s *session) overlayUnion(t *Type, node tree.Node, baseAddr, destAddr unsafe.Pointer) error {
	object, ok := node.(*tree.Object)
	if !ok {
		return errors.Wrapf(ErrParse, "expected object for %s, had %s", t.rType.String(), node.Kind())
	}
	if baseAddr != nil {
		valueAt(t.rType, destAddr).Set(valueAt(t.rType, baseAddr))
	}
	disc := t.discriminant
	if member := object.Member(disc.Name); member != nil && member.Kind() != tree.KindNull {
		s.codec.setScalar(disc.typ.rType, disc.xField.Pointer(destAddr), member)
	}
	for _, alt := range t.alternatives {
		member := object.Member(alt.Name)
		if member == nil {
			continue
		}
		var baseAltAddr unsafe.Pointer
		if baseAddr != nil {
			baseAltAddr = alt.xField.Pointer(baseAddr)
		}
		if err := s.overlayPointer(alt, member, baseAltAddr, alt.xField.Pointer(destAddr)); err != nil {
			return err
		}
	}
	return nil
}

// overlayArray decodes min(len(node), capacity) elements; a longer input is
// silently truncated, a shorter one leaves the remainder backfilled from the
// baseline when present
func (s *session) overlayArray(t *Type, array *tree.Array, baseAddr, destAddr unsafe.Pointer) error {
	elemSize := t.elem.rType.Size()
	count := array.Len()
	if count > t.length {
		count = t.length
	}
	for i := 0; i < count; i++ {
		offset := uintptr(i) * elemSize
		var baseElem unsafe.Pointer
		if baseAddr != nil {
			baseElem = unsafe.Add(baseAddr, offset)
		}
		if err := s.overlayElement(t.elem, array.At(i), baseElem, unsafe.Add(destAddr, offset)); err != nil {
			return err
		}
	}
	if baseAddr != nil {
		for i := count; i < t.length; i++ {
			offset := uintptr(i) * elemSize
			valueAt(t.elem.rType, unsafe.Add(destAddr, offset)).Set(valueAt(t.elem.rType, unsafe.Add(baseAddr, offset)))
		}
	}
	return nil
}

// overlaySliceValue rebuilds the destination slice with a fresh backing
// array so baseline storage is never written through, seeds it from the
// baseline, then overlays the provided elements
func (s *session) overlaySliceValue(t *Type, array *tree.Array, baseAddr, destAddr unsafe.Pointer) error {
	baseLen := 0
	var baseValue reflect.Value
	if baseAddr != nil {
		baseValue = valueAt(t.rType, baseAddr)
		baseLen = baseValue.Len()
	}
	total := array.Len()
	if baseLen > total {
		total = baseLen
	}
	result := reflect.MakeSlice(t.rType, total, total)
	for i := 0; i < baseLen; i++ {
		result.Index(i).Set(baseValue.Index(i))
	}
	for i := 0; i < array.Len(); i++ {
		var baseElem unsafe.Pointer
		if i < baseLen {
			baseElem = baseValue.Index(i).Addr().UnsafePointer()
		}
		if err := s.overlayElement(t.elem, array.At(i), baseElem, result.Index(i).Addr().UnsafePointer()); err != nil {
			return err
		}
	}
	valueAt(t.rType, destAddr).Set(result)
	return nil
}

// overlayElement decodes one array element: aggregates are strict about the
// node kind, scalars and nested arrays skip mismatched nodes silently
func (s *session) overlayElement(elem *Type, node tree.Node, baseAddr, destAddr unsafe.Pointer) error {
	if node == nil || node.Kind() == tree.KindNull {
		return nil
	}
	switch elem.kind {
	case KindStruct, KindUnion:
		return s.overlay(elem, node, baseAddr, destAddr)
	case KindScalar:
		s.codec.setScalar(elem.rType, destAddr, node)
		return nil
	case KindText:
		if text, ok := node.(*tree.String); ok {
			setTextAt(destAddr, elem.length, text.Value())
		}
		return nil
	case KindPointer:
		field := &Field{typ: elem}
		return s.overlayPointer(field, node, baseAddr, destAddr)
	case KindArray:
		array, ok := node.(*tree.Array)
		if !ok {
			return nil
		}
		return s.overlayArray(elem, array, baseAddr, destAddr)
	case KindSlice:
		array, ok := node.(*tree.Array)
		if !ok {
			return nil
		}
		return s.overlaySliceValue(elem, array, baseAddr, destAddr)
	}
	return nil
}

// setScalar coerces a tree node into scalar storage; a node of a foreign
// kind is ignored, an overflowing integer wraps to the storage width
func (c *Codec) setScalar(rType reflect.Type, addr unsafe.Pointer, node tree.Node) {
	value := valueAt(rType, addr)
	switch rType.Kind() {
	case reflect.Bool:
		if actual, ok := node.(*tree.Bool); ok {
			value.SetBool(actual.Value())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if actual, ok := node.(*tree.Number); ok {
			value.SetInt(wrapInt(actual.Int64(), rType.Bits()))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if actual, ok := node.(*tree.Number); ok {
			value.SetUint(wrapUint(uint64(actual.Int64()), rType.Bits()))
		}
	case reflect.Float32, reflect.Float64:
		if actual, ok := node.(*tree.Number); ok {
			value.SetFloat(actual.Float64())
		}
	case reflect.String:
		if actual, ok := node.(*tree.String); ok {
			value.SetString(actual.Value())
		}
	case reflect.Struct: //time.Time
		if actual, ok := node.(*tree.String); ok {
			if parsed, err := time.Parse(c.timeLayout, actual.Value()); err == nil {
				value.Set(reflect.ValueOf(parsed))
			}
		}
	case reflect.Slice: //[]byte
		if actual, ok := node.(*tree.String); ok {
			value.SetBytes([]byte(actual.Value()))
		}
	}
}
