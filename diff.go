package structdiff

import (
	"reflect"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/viant/xunsafe"

	"github.com/viant/structdiff/tree"
)

//Diff serializes value against an optional baseline of the same type,
//producing a tree with only the fields that differ; with a nil baseline every
//present field is emitted. A nil value yields a nil node, not an error.
func (c *Codec) Diff(value, baseline interface{}) (tree.Node, error) {
	rType, ptr, ok := instancePointer(value)
	if !ok {
		return nil, nil
	}
	t, err := c.typeFor(rType)
	if err != nil {
		return nil, err
	}
	var basePtr unsafe.Pointer
	if baseline != nil {
		baseType, bPtr, bOk := instancePointer(baseline)
		if baseType != rType {
			return nil, errors.Wrapf(ErrInvalidParam, "baseline type %s differs from %s", baseType.String(), rType.String())
		}
		if bOk {
			basePtr = bPtr
		}
	}
	sess := c.newSession()
	sess.mark(ptr)
	return sess.serialize(t, ptr, basePtr)
}

// serialize renders storage at addr as a tree node; baseAddr, when non nil,
// addresses the baseline counterpart used for diffing
func (s *session) serialize(t *Type, addr, baseAddr unsafe.Pointer) (tree.Node, error) {
	switch t.kind {
	case KindScalar:
		return s.codec.scalarNode(t.rType, addr), nil
	case KindText:
		return tree.NewString(textAt(addr, t.length)), nil
	case KindStruct:
		return s.serializeStruct(t, addr, baseAddr)
	case KindUnion:
		return s.serializeUnion(t, addr, baseAddr)
	case KindPointer:
		pointee := xunsafe.DerefPointer(addr)
		if pointee == nil {
			return nil, nil
		}
		var basePointee unsafe.Pointer
		if baseAddr != nil {
			basePointee = xunsafe.DerefPointer(baseAddr)
		}
		if !s.enter(pointee) {
			return nil, nil
		}
		defer s.leave(pointee)
		return s.serialize(t.elem, pointee, basePointee)
	case KindArray:
		return s.serializeArray(t, addr)
	case KindSlice:
		return s.serializeSlice(t, addr)
	}
	return nil, errors.Errorf("unsupported kind: %v", t.kind)
}

func (s *session) serializeStruct(t *Type, addr, baseAddr unsafe.Pointer) (tree.Node, error) {
	result := tree.NewObject()
	for _, field := range t.fields {
		if field.ref {
			continue
		}
		fieldAddr := field.xField.Pointer(addr)
		var baseFieldAddr unsafe.Pointer
		if baseAddr != nil {
			baseFieldAddr = field.xField.Pointer(baseAddr)
		}
		if err := s.serializeField(result, field, fieldAddr, baseFieldAddr); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *session) serializeField(parent *tree.Object, field *Field, addr, baseAddr unsafe.Pointer) error {
	switch field.typ.kind {
	case KindScalar:
		if baseAddr == nil || !equalScalar(field.typ.rType, addr, baseAddr) {
			parent.Set(field.Name, s.codec.scalarNode(field.typ.rType, addr))
		}
	case KindText:
		if baseAddr == nil || textAt(addr, field.typ.length) != textAt(baseAddr, field.typ.length) {
			parent.Set(field.Name, tree.NewString(textAt(addr, field.typ.length)))
		}
	case KindBits:
		//compare at the sub-field bit range grain, never the whole storage word
		group := tree.NewObject()
		word := wordAt(field.typ.rType, addr)
		var baseWord uint64
		if baseAddr != nil {
			baseWord = wordAt(field.typ.rType, baseAddr)
		}
		for _, bits := range field.bits {
			value := extractBits(word, bits)
			if baseAddr == nil || value != extractBits(baseWord, bits) {
				group.Set(bits.Name, tree.NewInt(int64(value)))
			}
		}
		if baseAddr == nil || !group.IsEmpty() {
			parent.Set(field.Name, group)
		}
	case KindStruct, KindUnion:
		sub, err := s.serialize(field.typ, addr, baseAddr)
		if err != nil {
			return err
		}
		subObject := sub.(*tree.Object)
		if baseAddr == nil || !subObject.IsEmpty() {
			parent.Set(field.Name, subObject)
		}
	case KindPointer:
		return s.serializePointerField(parent, field.Name, field.typ, addr, baseAddr)
	case KindArray:
		if baseAddr == nil || !s.codec.equal(field.typ, addr, baseAddr, map[unsafe.Pointer]struct{}{}) {
			node, err := s.serializeArray(field.typ, addr)
			if err != nil {
				return err
			}
			parent.Set(field.Name, node)
		}
	case KindSlice:
		if valueAt(field.typ.rType, addr).IsNil() {
			return nil
		}
		if baseAddr == nil || !s.codec.equal(field.typ, addr, baseAddr, map[unsafe.Pointer]struct{}{}) {
			node, err := s.serializeSlice(field.typ, addr)
			if err != nil {
				return err
			}
			parent.Set(field.Name, node)
		}
	}
	return nil
}

// serializePointerField emits an owned pointer field: a nil pointer is
// omitted regardless of baseline; a pointee already on the current walk is
// omitted to terminate cyclic structures
func (s *session) serializePointerField(parent *tree.Object, name string, t *Type, addr, baseAddr unsafe.Pointer) error {
	pointee := xunsafe.DerefPointer(addr)
	if pointee == nil {
		return nil
	}
	var basePointee unsafe.Pointer
	if baseAddr != nil {
		basePointee = xunsafe.DerefPointer(baseAddr)
	}
	if !s.enter(pointee) {
		return nil
	}
	defer s.leave(pointee)
	elem := t.elem
	switch elem.kind {
	case KindStruct, KindUnion:
		sub, err := s.serialize(elem, pointee, basePointee)
		if err != nil {
			return err
		}
		subObject := sub.(*tree.Object)
		if basePointee == nil || !subObject.IsEmpty() {
			parent.Set(name, subObject)
		}
	case KindScalar:
		if basePointee == nil || !equalScalar(elem.rType, pointee, basePointee) {
			parent.Set(name, s.codec.scalarNode(elem.rType, pointee))
		}
	case KindText:
		if basePointee == nil || textAt(pointee, elem.length) != textAt(basePointee, elem.length) {
			parent.Set(name, tree.NewString(textAt(pointee, elem.length)))
		}
	default:
		sub, err := s.serialize(elem, pointee, basePointee)
		if err != nil {
			return err
		}
		if sub != nil {
			parent.Set(name, sub)
		}
	}
	return nil
}

func (s *session) serializeUnion(t *Type, addr, baseAddr unsafe.Pointer) (tree.Node, error) {
	result := tree.NewObject()
	disc := t.discriminant
	discAddr := disc.xField.Pointer(addr)
	var baseDiscAddr unsafe.Pointer
	if baseAddr != nil {
		baseDiscAddr = disc.xField.Pointer(baseAddr)
	}
	if baseAddr == nil || !equalScalar(disc.typ.rType, discAddr, baseDiscAddr) {
		result.Set(disc.Name, s.codec.scalarNode(disc.typ.rType, discAddr))
	}
	active := t.activeAlternative(addr)
	if active == nil {
		return result, nil
	}
	altAddr := active.xField.Pointer(addr)
	var baseAltAddr unsafe.Pointer
	if baseAddr != nil {
		baseAltAddr = active.xField.Pointer(baseAddr)
	}
	if err := s.serializePointerField(result, active.Name, active.typ, altAddr, baseAltAddr); err != nil {
		return nil, err
	}
	return result, nil
}

// activeAlternative picks the alternative named by the discriminant value,
// falling back to the first non nil alternative
func (t *Type) activeAlternative(addr unsafe.Pointer) *Field {
	name := t.discriminant.xField.String(addr)
	if name != "" {
		for _, alt := range t.alternatives {
			if alt.Name == name {
				return alt
			}
		}
		return nil
	}
	for _, alt := range t.alternatives {
		if xunsafe.DerefPointer(alt.xField.Pointer(addr)) != nil {
			return alt
		}
	}
	return nil
}

// serializeArray emits every element; element level diffing is not propagated
// below an array, each element is rendered against a nil baseline
func (s *session) serializeArray(t *Type, addr unsafe.Pointer) (tree.Node, error) {
	result := tree.NewArray()
	elemSize := t.elem.rType.Size()
	for i := 0; i < t.length; i++ {
		node, err := s.serialize(t.elem, unsafe.Add(addr, uintptr(i)*elemSize), nil)
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

func (s *session) serializeSlice(t *Type, addr unsafe.Pointer) (tree.Node, error) {
	result := tree.NewArray()
	value := valueAt(t.rType, addr)
	for i := 0; i < value.Len(); i++ {
		node, err := s.serialize(t.elem, value.Index(i).Addr().UnsafePointer(), nil)
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

// scalarNode renders a scalar as its numeric, string or boolean node form
func (c *Codec) scalarNode(rType reflect.Type, addr unsafe.Pointer) tree.Node {
	value := valueAt(rType, addr)
	switch rType.Kind() {
	case reflect.Bool:
		return tree.NewBool(value.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return tree.NewInt(value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return tree.NewInt(int64(value.Uint()))
	case reflect.Float32, reflect.Float64:
		return tree.NewFloat(value.Float())
	case reflect.String:
		return tree.NewString(value.String())
	case reflect.Struct: //time.Time
		if aTime, ok := value.Interface().(time.Time); ok {
			return tree.NewString(aTime.Format(c.timeLayout))
		}
	case reflect.Slice: //[]byte
		return tree.NewString(string(value.Bytes()))
	}
	return tree.Null()
}
