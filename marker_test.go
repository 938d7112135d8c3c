package structdiff

import (
	"github.com/stretchr/testify/assert"
	"github.com/viant/xunsafe"
	"reflect"
	"testing"
)

func TestMarker_IsSet(t *testing.T) {

	var testCases = []struct {
		description string
		provider    func() interface{}
		expectSet   []string
		expectUnset []string
		expectError bool
	}{
		{
			description: "aligned set marker",
			provider: func() interface{} {
				type EntityHas struct {
					Id     bool
					Name   bool
					Active bool
				}
				type Entity struct {
					Id     int
					Name   string
					Active bool
					Has    *EntityHas `setMarker:"true"`
				}
				return &Entity{Has: &EntityHas{Id: true, Active: true}, Id: 1, Active: true}
			},
			expectSet:   []string{"Id", "Active"},
			expectUnset: []string{"Name"},
		},
		{
			description: "marker holder with fewer fields than the owner",
			provider: func() interface{} {
				type EntityHas struct {
					Id   bool
					Name bool
				}
				type Entity struct {
					Id     int
					Name   string
					Active bool
					Has    *EntityHas `setMarker:"true"`
				}
				return &Entity{Has: &EntityHas{Name: true}, Name: "abc"}
			},
			expectSet:   []string{"Name"},
			expectUnset: []string{"Id"},
		},
		{
			description: "marker field without an owner counterpart",
			provider: func() interface{} {
				type EntityHas struct {
					Id   bool
					Nums bool
				}
				type Entity struct {
					Id   int
					Name string
					Has  *EntityHas `setMarker:"true"`
				}
				return &Entity{Has: &EntityHas{Id: true}}
			},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		value := testCase.provider()
		marker, err := NewMarker(reflect.TypeOf(value))
		if testCase.expectError {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		ptr := xunsafe.AsPointer(value)
		for _, name := range testCase.expectSet {
			assert.True(t, marker.IsSet(ptr, marker.Index(name)), testCase.description+" "+name)
		}
		for _, name := range testCase.expectUnset {
			assert.False(t, marker.IsSet(ptr, marker.Index(name)), testCase.description+" "+name)
		}
	}
}

func TestMarker_Set(t *testing.T) {
	type EntityHas struct {
		Id   bool
		Name bool
	}
	type Entity struct {
		Id   int
		Name string
		Has  *EntityHas `setMarker:"true"`
	}
	marker, err := NewMarker(reflect.TypeOf(Entity{}))
	if !assert.Nil(t, err) {
		return
	}
	entity := &Entity{}
	ptr := xunsafe.AsPointer(entity)
	assert.NotNil(t, marker.Set(ptr, marker.Index("Id"), true), "holder not allocated yet")

	marker.EnsureHolder(ptr)
	if !assert.NotNil(t, entity.Has) {
		return
	}
	assert.Nil(t, marker.Set(ptr, marker.Index("Id"), true))
	assert.True(t, entity.Has.Id)
	assert.False(t, entity.Has.Name)

	assert.Nil(t, marker.SetAll(ptr, true))
	assert.True(t, entity.Has.Name)
}
