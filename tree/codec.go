package tree

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/francoispqt/gojay"
)

var nullLiteral = gojay.EmbeddedJSON([]byte("null"))

// Parse builds a value tree from JSON bytes
func Parse(data []byte) (Node, error) {
	input := bytes.TrimSpace(data)
	if len(input) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	switch input[0] {
	case '{':
		builder := &objectBuilder{object: NewObject()}
		if err := gojay.UnmarshalJSONObject(input, builder); err != nil {
			return nil, err
		}
		return builder.object, nil
	case '[':
		builder := &arrayBuilder{array: NewArray()}
		if err := gojay.UnmarshalJSONArray(input, builder); err != nil {
			return nil, err
		}
		return builder.array, nil
	case '"':
		var value string
		if err := gojay.Unmarshal(input, &value); err != nil {
			return nil, err
		}
		return NewString(value), nil
	case 't', 'f':
		var value bool
		if err := gojay.Unmarshal(input, &value); err != nil {
			return nil, err
		}
		return NewBool(value), nil
	case 'n':
		if !bytes.Equal(input, []byte("null")) {
			return nil, fmt.Errorf("invalid literal: %s", input)
		}
		return Null(), nil
	default:
		return parseNumber(input)
	}
}

// parseNumber keeps integer tokens in int64 form so values beyond the float64
// mantissa survive a parse/marshal round trip
func parseNumber(input []byte) (Node, error) {
	token := string(input)
	if !bytes.ContainsAny(input, ".eE") {
		if value, err := strconv.ParseInt(token, 10, 64); err == nil {
			return NewInt(value), nil
		}
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number: %s", token)
	}
	return NewFloat(value), nil
}

// Marshal renders a value tree as JSON bytes
func Marshal(node Node) ([]byte, error) {
	switch actual := node.(type) {
	case *Object:
		return gojay.MarshalJSONObject(actual)
	case *Array:
		return gojay.MarshalJSONArray(actual)
	case *Number:
		if actual.IsInt() {
			return strconv.AppendInt(nil, actual.Int64(), 10), nil
		}
		return gojay.Marshal(actual.Float64())
	case *String:
		return gojay.Marshal(actual.Value())
	case *Bool:
		return gojay.Marshal(actual.Value())
	case nullNode:
		return []byte("null"), nil
	case nil:
		return []byte("null"), nil
	}
	return nil, fmt.Errorf("unsupported node: %T", node)
}

// MarshalJSONObject implements gojay object marshaler
func (o *Object) MarshalJSONObject(enc *gojay.Encoder) {
	for i, key := range o.keys {
		encodeMember(enc, key, o.items[i])
	}
}

// IsNil implements gojay object marshaler
func (o *Object) IsNil() bool { return o == nil }

// MarshalJSONArray implements gojay array marshaler
func (a *Array) MarshalJSONArray(enc *gojay.Encoder) {
	for _, item := range a.items {
		encodeItem(enc, item)
	}
}

// IsNil implements gojay array marshaler
func (a *Array) IsNil() bool { return a == nil }

func encodeMember(enc *gojay.Encoder, key string, node Node) {
	switch actual := node.(type) {
	case *Object:
		enc.AddObjectKey(key, actual)
	case *Array:
		enc.AddArrayKey(key, actual)
	case *Number:
		if actual.IsInt() {
			raw := gojay.EmbeddedJSON(strconv.AppendInt(nil, actual.Int64(), 10))
			enc.AddEmbeddedJSONKey(key, &raw)
			return
		}
		enc.AddFloatKey(key, actual.Float64())
	case *String:
		enc.AddStringKey(key, actual.Value())
	case *Bool:
		enc.AddBoolKey(key, actual.Value())
	default:
		raw := nullLiteral
		enc.AddEmbeddedJSONKey(key, &raw)
	}
}

func encodeItem(enc *gojay.Encoder, node Node) {
	switch actual := node.(type) {
	case *Object:
		enc.AddObject(actual)
	case *Array:
		enc.AddArray(actual)
	case *Number:
		if actual.IsInt() {
			raw := gojay.EmbeddedJSON(strconv.AppendInt(nil, actual.Int64(), 10))
			enc.AddEmbeddedJSON(&raw)
			return
		}
		enc.AddFloat(actual.Float64())
	case *String:
		enc.AddString(actual.Value())
	case *Bool:
		enc.AddBool(actual.Value())
	default:
		raw := nullLiteral
		enc.AddEmbeddedJSON(&raw)
	}
}

type objectBuilder struct {
	object *Object
}

// UnmarshalJSONObject implements gojay object unmarshaler; each member is
// captured as raw bytes and re-parsed so numeric tokens never pass through
// float64
func (b *objectBuilder) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	var raw gojay.EmbeddedJSON
	if err := dec.AddEmbeddedJSON(&raw); err != nil {
		return err
	}
	node, err := Parse(raw)
	if err != nil {
		return err
	}
	b.object.Set(key, node)
	return nil
}

// NKeys implements gojay object unmarshaler, 0 accepts all keys
func (b *objectBuilder) NKeys() int { return 0 }

type arrayBuilder struct {
	array *Array
}

// UnmarshalJSONArray implements gojay array unmarshaler
func (b *arrayBuilder) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var raw gojay.EmbeddedJSON
	if err := dec.AddEmbeddedJSON(&raw); err != nil {
		return err
	}
	node, err := Parse(raw)
	if err != nil {
		return err
	}
	b.array.Append(node)
	return nil
}
