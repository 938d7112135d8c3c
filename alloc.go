package structdiff

import "reflect"

// Allocator materializes owned pointees during overlay decoding. The default
// implementation never fails; tests and callers with custom arenas can supply
// their own via WithAllocator.
type Allocator interface {
	Allocate(t reflect.Type) (reflect.Value, error)
}

type stdAllocator struct{}

func (stdAllocator) Allocate(t reflect.Type) (reflect.Value, error) {
	return reflect.New(t), nil
}
