package structdiff

import "github.com/viant/tagly/format/text"

//Option represents a codec option
type Option func(c *Codec)

//Options represents codec options
type Options []Option

//Apply applies options
func (o Options) Apply(c *Codec) {
	if len(o) == 0 {
		return
	}
	for _, opt := range o {
		opt(c)
	}
}

//WithTagName sets the struct tag carrying serialized field names (default "json")
func WithTagName(tagName string) Option {
	return func(c *Codec) {
		c.tagName = tagName
	}
}

//WithCaseFormat sets the case format applied to field names without an explicit tag
func WithCaseFormat(caseFormat text.CaseFormat) Option {
	return func(c *Codec) {
		c.caseFormat = caseFormat
	}
}

//WithMaxDepth bounds pointer recursion in addition to the cycle guard
func WithMaxDepth(maxDepth int) Option {
	return func(c *Codec) {
		c.maxDepth = maxDepth
	}
}

//WithAllocator sets owned pointee allocator
func WithAllocator(allocator Allocator) Option {
	return func(c *Codec) {
		c.allocator = allocator
	}
}

//WithTimeLayout sets time.Time serialization layout
func WithTimeLayout(timeLayout string) Option {
	return func(c *Codec) {
		c.timeLayout = timeLayout
	}
}
