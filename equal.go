package structdiff

import (
	"bytes"
	"reflect"
	"time"
	"unsafe"

	"github.com/viant/xunsafe"
)

// equal compares two instances of the same type through the descriptor,
// field by field and element by element, never by raw memory. The seen set
// terminates comparison of cyclic pointer chains.
func (c *Codec) equal(t *Type, aAddr, bAddr unsafe.Pointer, seen map[unsafe.Pointer]struct{}) bool {
	switch t.kind {
	case KindScalar:
		return equalScalar(t.rType, aAddr, bAddr)
	case KindText:
		return textAt(aAddr, t.length) == textAt(bAddr, t.length)
	case KindArray:
		elemSize := t.elem.rType.Size()
		for i := 0; i < t.length; i++ {
			offset := uintptr(i) * elemSize
			if !c.equal(t.elem, unsafe.Add(aAddr, offset), unsafe.Add(bAddr, offset), seen) {
				return false
			}
		}
		return true
	case KindSlice:
		aValue := valueAt(t.rType, aAddr)
		bValue := valueAt(t.rType, bAddr)
		if aValue.Len() != bValue.Len() {
			return false
		}
		for i := 0; i < aValue.Len(); i++ {
			aElem := aValue.Index(i).Addr().UnsafePointer()
			bElem := bValue.Index(i).Addr().UnsafePointer()
			if !c.equal(t.elem, aElem, bElem, seen) {
				return false
			}
		}
		return true
	case KindStruct:
		for _, field := range t.fields {
			if field.ref {
				continue
			}
			aField := field.xField.Pointer(aAddr)
			bField := field.xField.Pointer(bAddr)
			if field.bits != nil {
				aWord := wordAt(field.typ.rType, aField)
				bWord := wordAt(field.typ.rType, bField)
				for _, bits := range field.bits {
					if extractBits(aWord, bits) != extractBits(bWord, bits) {
						return false
					}
				}
				continue
			}
			if !c.equal(field.typ, aField, bField, seen) {
				return false
			}
		}
		return true
	case KindUnion:
		disc := t.discriminant
		if !equalScalar(disc.typ.rType, disc.xField.Pointer(aAddr), disc.xField.Pointer(bAddr)) {
			return false
		}
		for _, alt := range t.alternatives {
			if !c.equal(alt.typ, alt.xField.Pointer(aAddr), alt.xField.Pointer(bAddr), seen) {
				return false
			}
		}
		return true
	case KindPointer:
		aPointee := xunsafe.DerefPointer(aAddr)
		bPointee := xunsafe.DerefPointer(bAddr)
		if aPointee == nil || bPointee == nil {
			return aPointee == bPointee
		}
		if _, ok := seen[aPointee]; ok {
			return true
		}
		seen[aPointee] = struct{}{}
		return c.equal(t.elem, aPointee, bPointee, seen)
	}
	return true
}

func equalScalar(rType reflect.Type, aAddr, bAddr unsafe.Pointer) bool {
	aValue := valueAt(rType, aAddr)
	bValue := valueAt(rType, bAddr)
	switch rType.Kind() {
	case reflect.Bool:
		return aValue.Bool() == bValue.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return aValue.Int() == bValue.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return aValue.Uint() == bValue.Uint()
	case reflect.Float32, reflect.Float64:
		return aValue.Float() == bValue.Float()
	case reflect.String:
		return aValue.String() == bValue.String()
	case reflect.Struct: //time.Time
		aTime, _ := aValue.Interface().(time.Time)
		bTime, _ := bValue.Interface().(time.Time)
		return aTime.Equal(bTime)
	case reflect.Slice: //[]byte
		return bytes.Equal(aValue.Bytes(), bValue.Bytes())
	}
	return false
}
