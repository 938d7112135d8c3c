package structdiff

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/viant/xunsafe"
)

//Marker field set marker; a holder struct flagged with setMarker:"true"
//records which owner fields were populated by overlay decoding
type Marker struct {
	t      reflect.Type
	holder *xunsafe.Field
	fields []*xunsafe.Field
	index  map[string]int //marker field position by owner field name
}

//Index returns mapped field index or -1
func (m *Marker) Index(name string) int {
	if len(m.index) == 0 {
		return -1
	}
	pos, ok := m.index[name]
	if !ok {
		return -1
	}
	return pos
}

//CanUseHolder returns true if holder is allocated
func (m *Marker) CanUseHolder(ptr unsafe.Pointer) bool {
	if m.holder == nil || m.holder.IsNil(ptr) {
		return false
	}
	return true
}

//EnsureHolder allocates the holder struct when nil
func (m *Marker) EnsureHolder(ptr unsafe.Pointer) {
	if m.holder == nil || m.holder.Type.Kind() != reflect.Ptr {
		return
	}
	if !m.holder.IsNil(ptr) {
		return
	}
	value := reflect.New(m.holder.Type.Elem())
	reflect.NewAt(m.holder.Type, m.holder.Pointer(ptr)).Elem().Set(value)
}

//SetAll sets all marker fields with supplied flag
func (m *Marker) SetAll(ptr unsafe.Pointer, flag bool) error {
	if !m.CanUseHolder(ptr) {
		return errors.New("failed to set all due to holder was empty")
	}
	markerPtr := m.holder.ValuePointer(ptr)
	for _, field := range m.fields {
		if field == nil {
			continue
		}
		field.SetBool(markerPtr, flag)
	}
	return nil
}

//Set sets field marker
func (m *Marker) Set(ptr unsafe.Pointer, index int, flag bool) error {
	if !m.CanUseHolder(ptr) {
		return errors.New("holder was empty")
	}
	markerPtr := m.holder.ValuePointer(ptr)
	if index >= len(m.fields) || m.fields[index] == nil {
		return errors.Errorf("field at index %v was missing in set marker", index)
	}
	m.fields[index].SetBool(markerPtr, flag)
	return nil
}

//IsSet returns true if field has been set
func (m *Marker) IsSet(ptr unsafe.Pointer, index int) bool {
	if m.holder == nil || m.holder.IsNil(ptr) {
		return true //no presence provider, assume all fields are set
	}
	markerPtr := m.holder.ValuePointer(ptr)
	if index >= len(m.fields) || m.fields[index] == nil {
		return false
	}
	return m.fields[index].Bool(markerPtr)
}

func (m *Marker) init() error {
	if m.holder == nil {
		return errors.Errorf("holder was empty for %s", m.t.String())
	}
	holderType := ensureStruct(m.holder.Type)
	if holderType == nil {
		return errors.Errorf("holder %s was not a struct", m.holder.Type.String())
	}
	for i := 0; i < holderType.NumField(); i++ {
		markerField := holderType.Field(i)
		pos, ok := m.index[markerField.Name]
		if !ok {
			return errors.Errorf("marker field: '%v' does not have corresponding struct field", markerField.Name)
		}
		m.fields[pos] = xunsafe.NewField(markerField)
	}
	return nil
}

//NewMarker returns new struct field set marker
func NewMarker(t reflect.Type) (*Marker, error) {
	if t = ensureStruct(t); t == nil {
		return nil, errors.New("supplied type is not struct")
	}
	numField := t.NumField()
	result := &Marker{t: t, fields: make([]*xunsafe.Field, numField), index: make(map[string]int, numField)}
	for i := 0; i < numField; i++ {
		field := t.Field(i)
		if IsSetMarker(field.Tag) {
			result.holder = xunsafe.NewField(field)
			continue
		}
		result.index[field.Name] = i
	}
	return result, result.init()
}
