package structdiff

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	//TagName defines the default tag carrying the serialized field name
	TagName = "json"

	//BitsTag defines bitfield group tag, i.e. bits:"flag1:2,flag2:3,value:16"
	BitsTag = "bits"

	//UnionTag defines tagged union tag; union:"discriminator" marks the
	//discriminant field, union:"<name>" marks an alternative
	UnionTag = "union"

	//RefTag defines non owning back-reference tag
	RefTag = "ref"

	//SetMarkerTag defines presence marker holder tag
	SetMarkerTag = "setMarker"

	//UnionDiscriminator is the reserved union tag value selecting the discriminant field
	UnionDiscriminator = "discriminator"
)

// IsSetMarker returns true if tag marks a presence marker holder
func IsSetMarker(tag reflect.StructTag) bool {
	_, ok := tag.Lookup(SetMarkerTag)
	return ok
}

func isRef(tag reflect.StructTag) bool {
	value, ok := tag.Lookup(RefTag)
	if !ok {
		return false
	}
	return value != "false"
}

// fieldTagName returns name from the naming tag and whether the field is excluded
func fieldTagName(tag reflect.StructTag, tagName string) (string, bool) {
	value, ok := tag.Lookup(tagName)
	if !ok {
		return "", false
	}
	name := value
	if index := strings.Index(value, ","); index != -1 {
		name = value[:index]
	}
	if name == "-" {
		return "", true
	}
	return name, false
}

func parseBits(value string, storageBits int) ([]*BitField, error) {
	var result []*BitField
	shift := 0
	seen := map[string]bool{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		pair := strings.SplitN(item, ":", 2)
		if len(pair) != 2 {
			return nil, errors.Errorf("invalid bits fragment: %q", item)
		}
		name := strings.TrimSpace(pair[0])
		width, err := strconv.Atoi(strings.TrimSpace(pair[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid bits width in %q", item)
		}
		if name == "" || width < 1 || width > 64 {
			return nil, errors.Errorf("invalid bits fragment: %q", item)
		}
		if seen[name] {
			return nil, errors.Errorf("duplicate bits sub-field: %q", name)
		}
		seen[name] = true
		result = append(result, &BitField{Name: name, Width: uint8(width), Shift: uint8(shift)})
		shift += width
	}
	if len(result) == 0 {
		return nil, errors.New("empty bits tag")
	}
	if shift > storageBits {
		return nil, errors.Errorf("bits sub-fields use %v bits, storage word has %v", shift, storageBits)
	}
	return result, nil
}
