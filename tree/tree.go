package tree

// Kind represents a value tree node kind
type Kind int

const (
	//KindNull represents a null node
	KindNull Kind = iota
	//KindBool represents a boolean node
	KindBool
	//KindNumber represents a numeric node
	KindNumber
	//KindString represents a string node
	KindString
	//KindArray represents an array node
	KindArray
	//KindObject represents an object node
	KindObject
)

// String returns kind text form
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Node is a single node of the value tree
type Node interface {
	Kind() Kind
}

type (
	//Object represents an object node with insertion ordered members
	Object struct {
		index map[string]int
		keys  []string
		items []Node
	}

	//Array represents an array node
	Array struct {
		items []Node
	}

	//Number represents a numeric node, preserving integer vs floating semantics
	Number struct {
		value   float64
		integer int64
		isInt   bool
	}

	//String represents a string node
	String struct {
		value string
	}

	//Bool represents a boolean node
	Bool struct {
		value bool
	}

	nullNode struct{}
)

// NewObject creates an object node
func NewObject() *Object {
	return &Object{index: map[string]int{}}
}

// Kind returns object kind
func (o *Object) Kind() Kind { return KindObject }

// Len returns member count
func (o *Object) Len() int { return len(o.keys) }

// IsEmpty returns true if object has no members
func (o *Object) IsEmpty() bool { return len(o.keys) == 0 }

// Keys returns member names in insertion order
func (o *Object) Keys() []string { return o.keys }

// Member returns a named member or nil
func (o *Object) Member(key string) Node {
	pos, ok := o.index[key]
	if !ok {
		return nil
	}
	return o.items[pos]
}

// Has returns true if a named member is present
func (o *Object) Has(key string) bool {
	_, ok := o.index[key]
	return ok
}

// Set sets a named member, replacing any previous value
func (o *Object) Set(key string, node Node) {
	if pos, ok := o.index[key]; ok {
		o.items[pos] = node
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.items = append(o.items, node)
}

// Each iterates members in insertion order
func (o *Object) Each(cb func(key string, node Node)) {
	for i, key := range o.keys {
		cb(key, o.items[i])
	}
}

// NewArray creates an array node
func NewArray() *Array {
	return &Array{}
}

// Kind returns array kind
func (a *Array) Kind() Kind { return KindArray }

// Len returns element count
func (a *Array) Len() int { return len(a.items) }

// At returns i-th element or nil when out of range
func (a *Array) At(i int) Node {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Append appends an element
func (a *Array) Append(node Node) {
	a.items = append(a.items, node)
}

// NewInt creates a numeric node holding an integer
func NewInt(value int64) *Number {
	return &Number{value: float64(value), integer: value, isInt: true}
}

// NewFloat creates a numeric node holding a float
func NewFloat(value float64) *Number {
	return &Number{value: value}
}

// Kind returns number kind
func (n *Number) Kind() Kind { return KindNumber }

// Float64 returns the numeric value
func (n *Number) Float64() float64 { return n.value }

// Int64 returns the integer value; when the node holds a float the fraction is truncated
func (n *Number) Int64() int64 {
	if n.isInt {
		return n.integer
	}
	return int64(n.value)
}

// IsInt returns true if node was created from an integer
func (n *Number) IsInt() bool { return n.isInt }

// NewString creates a string node
func NewString(value string) *String {
	return &String{value: value}
}

// Kind returns string kind
func (s *String) Kind() Kind { return KindString }

// Value returns string value
func (s *String) Value() string { return s.value }

// NewBool creates a boolean node
func NewBool(value bool) *Bool {
	return &Bool{value: value}
}

// Kind returns bool kind
func (b *Bool) Kind() Kind { return KindBool }

// Value returns boolean value
func (b *Bool) Value() bool { return b.value }

func (nullNode) Kind() Kind { return KindNull }

var theNull = nullNode{}

// Null returns the null node
func Null() Node { return theNull }
