package structdiff

import (
	"bytes"
	"reflect"
	"unsafe"
)

// valueAt returns an addressable reflect value over storage at addr
func valueAt(rType reflect.Type, addr unsafe.Pointer) reflect.Value {
	return reflect.NewAt(rType, addr).Elem()
}

// textAt reads a fixed byte buffer as text up to the first NUL
func textAt(addr unsafe.Pointer, length int) string {
	if length == 0 {
		return ""
	}
	buffer := unsafe.Slice((*byte)(addr), length)
	end := bytes.IndexByte(buffer, 0)
	if end == -1 {
		end = length
	}
	return string(buffer[:end])
}

// setTextAt writes text into a fixed byte buffer, truncating to length-1 and
// NUL terminating, the way the buffer would be filled by strncpy
func setTextAt(addr unsafe.Pointer, length int, value string) {
	if length == 0 {
		return
	}
	buffer := unsafe.Slice((*byte)(addr), length)
	for i := range buffer {
		buffer[i] = 0
	}
	copy(buffer[:length-1], value)
}

func extractBits(word uint64, bits *BitField) uint64 {
	mask := (uint64(1) << bits.Width) - 1
	return (word >> bits.Shift) & mask
}

func insertBits(word uint64, bits *BitField, value uint64) uint64 {
	mask := ((uint64(1) << bits.Width) - 1) << bits.Shift
	return (word &^ mask) | ((value << bits.Shift) & mask)
}

func wordAt(rType reflect.Type, addr unsafe.Pointer) uint64 {
	return valueAt(rType, addr).Uint()
}

func setWordAt(rType reflect.Type, addr unsafe.Pointer, word uint64) {
	if bits := rType.Bits(); bits < 64 {
		word &= (uint64(1) << bits) - 1
	}
	valueAt(rType, addr).SetUint(word)
}

// wrapInt narrows an int64 to the given bit width with two's complement wrap
func wrapInt(value int64, bits int) int64 {
	if bits >= 64 {
		return value
	}
	shift := 64 - bits
	return value << shift >> shift
}

func wrapUint(value uint64, bits int) uint64 {
	if bits >= 64 {
		return value
	}
	return value & ((uint64(1) << bits) - 1)
}
