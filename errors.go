package structdiff

import "github.com/pkg/errors"

var (
	// ErrInvalidParam indicates a required argument (tree node, destination) was absent
	ErrInvalidParam = errors.New("invalid param")

	// ErrParse indicates the tree node kind does not match what the target type requires
	ErrParse = errors.New("parse error")

	// ErrAlloc indicates owned pointer materialization failed
	ErrAlloc = errors.New("allocation error")
)
