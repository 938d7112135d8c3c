package structdiff

import (
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/viant/xunsafe"
)

// Kind represents a convertible type shape
type Kind int

const (
	//KindScalar represents numbers, booleans, strings and time
	KindScalar Kind = iota
	//KindText represents a fixed size NUL terminated byte buffer
	KindText
	//KindArray represents a fixed length array
	KindArray
	//KindSlice represents a dynamically sized sequence
	KindSlice
	//KindStruct represents a nested aggregate
	KindStruct
	//KindPointer represents an owned pointer
	KindPointer
	//KindUnion represents a tagged union with an explicit discriminant
	KindUnion
	//KindBits represents a bitfield group packed in one storage word
	KindBits
)

// String returns kind text form
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindStruct:
		return "struct"
	case KindPointer:
		return "pointer"
	case KindUnion:
		return "union"
	case KindBits:
		return "bits"
	}
	return "unknown"
}

type (
	//Type describes one convertible type; descriptors are immutable once
	//built and shared by all conversions of that type
	Type struct {
		kind   Kind
		rType  reflect.Type
		elem   *Type
		length int
		fields []*Field

		//union view
		discriminant *Field
		alternatives []*Field

		marker *Marker
	}

	//Field describes a struct field taking part in conversion
	Field struct {
		Name   string
		xField *xunsafe.Field
		index  int
		typ    *Type
		ref    bool
		bits   []*BitField
	}

	//BitField is one named bit range of a bitfield group storage word
	BitField struct {
		Name  string
		Width uint8
		Shift uint8
	}
)

// Kind returns descriptor kind
func (t *Type) Kind() Kind { return t.kind }

// Type returns the underlying reflect type
func (t *Type) Type() reflect.Type { return t.rType }

// Elem returns element descriptor for array, slice and pointer kinds
func (t *Type) Elem() *Type { return t.elem }

// Len returns fixed array length, -1 otherwise
func (t *Type) Len() int { return t.length }

// Fields returns aggregate fields
func (t *Type) Fields() []*Field { return t.fields }

// Marker returns the presence marker or nil
func (t *Type) Marker() *Marker { return t.marker }

// Discriminant returns the union discriminant field or nil
func (t *Type) Discriminant() *Field { return t.discriminant }

// Alternatives returns union alternative fields
func (t *Type) Alternatives() []*Field { return t.alternatives }

// Type returns field descriptor
func (f *Field) Type() *Type { return f.typ }

// IsRef returns true for a non owning back-reference
func (f *Field) IsRef() bool { return f.ref }

// Bits returns bitfield group sub-fields
func (f *Field) Bits() []*BitField { return f.bits }

var timeType = reflect.TypeOf(time.Time{})

func isTimeType(candidate reflect.Type) bool {
	return candidate == timeType
}

func ensureStruct(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Struct:
		return t
	case reflect.Ptr:
		return ensureStruct(t.Elem())
	}
	return nil
}

// typeFor returns a cached descriptor, building it on first use
func (c *Codec) typeFor(rType reflect.Type) (*Type, error) {
	if value, ok := c.types.Load(rType); ok {
		return value.(*Type), nil
	}
	result, err := c.buildType(rType, map[reflect.Type]*Type{})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Codec) buildType(rType reflect.Type, inProgress map[reflect.Type]*Type) (*Type, error) {
	if value, ok := c.types.Load(rType); ok {
		return value.(*Type), nil
	}
	if ret, ok := inProgress[rType]; ok {
		return ret, nil
	}
	ret := &Type{rType: rType, length: -1}
	inProgress[rType] = ret
	switch rType.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		ret.kind = KindScalar
	case reflect.Struct:
		if isTimeType(rType) {
			ret.kind = KindScalar
			break
		}
		if err := c.buildStruct(ret, rType, inProgress); err != nil {
			return nil, err
		}
	case reflect.Ptr:
		ret.kind = KindPointer
		elem, err := c.buildType(rType.Elem(), inProgress)
		if err != nil {
			return nil, err
		}
		ret.elem = elem
	case reflect.Array:
		if rType.Elem().Kind() == reflect.Uint8 {
			ret.kind = KindText
			ret.length = rType.Len()
			break
		}
		ret.kind = KindArray
		ret.length = rType.Len()
		elem, err := c.buildType(rType.Elem(), inProgress)
		if err != nil {
			return nil, err
		}
		ret.elem = elem
	case reflect.Slice:
		if rType.Elem().Kind() == reflect.Uint8 {
			//byte slices travel as string nodes
			ret.kind = KindScalar
			break
		}
		ret.kind = KindSlice
		elem, err := c.buildType(rType.Elem(), inProgress)
		if err != nil {
			return nil, err
		}
		ret.elem = elem
	default:
		return nil, errors.Errorf("unsupported type: %s", rType.String())
	}
	c.types.Store(rType, ret)
	return ret, nil
}

func (c *Codec) buildStruct(ret *Type, rType reflect.Type, inProgress map[reflect.Type]*Type) error {
	ret.kind = KindStruct
	xStruct := xunsafe.NewStruct(rType)
	for i := 0; i < rType.NumField(); i++ {
		structField := rType.Field(i)
		if structField.PkgPath != "" {
			continue
		}
		tag := structField.Tag
		if IsSetMarker(tag) {
			marker, err := NewMarker(rType)
			if err != nil {
				return errors.Wrapf(err, "invalid marker on %s", rType.String())
			}
			ret.marker = marker
			continue
		}
		name, exclude := fieldTagName(tag, c.tagName)
		if exclude {
			continue
		}
		if name == "" {
			name = c.formatName(structField.Name)
		}
		aField := &Field{Name: name, xField: &xStruct.Fields[i], index: i, ref: isRef(tag)}

		if bitsValue, ok := tag.Lookup(BitsTag); ok {
			switch structField.Type.Kind() {
			case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
			default:
				return errors.Errorf("bits storage %s.%s must be an unsigned integer", rType.String(), structField.Name)
			}
			bits, err := parseBits(bitsValue, structField.Type.Bits())
			if err != nil {
				return errors.Wrapf(err, "invalid bits tag on %s.%s", rType.String(), structField.Name)
			}
			aField.bits = bits
			aField.typ = &Type{kind: KindBits, rType: structField.Type, length: -1}
		} else {
			fieldType, err := c.buildType(structField.Type, inProgress)
			if err != nil {
				return err
			}
			aField.typ = fieldType
		}

		if unionValue, ok := tag.Lookup(UnionTag); ok {
			ret.kind = KindUnion
			if unionValue == UnionDiscriminator {
				if ret.discriminant != nil {
					return errors.Errorf("union %s has more than one discriminant", rType.String())
				}
				if aField.typ.kind != KindScalar || structField.Type.Kind() != reflect.String {
					return errors.Errorf("union discriminant %s.%s must be a string", rType.String(), structField.Name)
				}
				ret.discriminant = aField
			} else {
				if aField.typ.kind != KindPointer {
					return errors.Errorf("union alternative %s.%s must be a pointer", rType.String(), structField.Name)
				}
				aField.Name = unionValue
				ret.alternatives = append(ret.alternatives, aField)
			}
		}
		ret.fields = append(ret.fields, aField)
	}
	if ret.kind == KindUnion {
		if ret.discriminant == nil {
			return errors.Errorf("union %s has no discriminant", rType.String())
		}
		if len(ret.alternatives)+1 != len(ret.fields) {
			return errors.Errorf("union %s mixes union and plain fields", rType.String())
		}
	}
	return nil
}
