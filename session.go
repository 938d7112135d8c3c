package structdiff

import "unsafe"

//session holds per top-level call walk state: the visited identity set
//guarding cyclic owned pointer chains and the recursion depth bound
type session struct {
	codec   *Codec
	visited map[unsafe.Pointer]struct{}
	depth   int
}

func (c *Codec) newSession() *session {
	return &session{codec: c}
}

// mark registers the top level instance so a pointer chain leading back to it
// is pruned without consuming recursion depth
func (s *session) mark(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	if s.visited == nil {
		s.visited = map[unsafe.Pointer]struct{}{}
	}
	s.visited[ptr] = struct{}{}
}

// enter registers a pointee before recursion; false means the branch must be
// pruned, either because the pointee is already on the current walk or the
// depth bound was reached
func (s *session) enter(ptr unsafe.Pointer) bool {
	if s.depth >= s.codec.maxDepth {
		return false
	}
	if s.visited == nil {
		s.visited = map[unsafe.Pointer]struct{}{}
	}
	if _, ok := s.visited[ptr]; ok {
		return false
	}
	s.visited[ptr] = struct{}{}
	s.depth++
	return true
}

// leave releases a pointee when its branch completes; a pointee aliased from
// several acyclic branches is serialized by each of them, only a pointee on
// the current walk (or the top level mark) stays pruned
func (s *session) leave(ptr unsafe.Pointer) {
	s.depth--
	delete(s.visited, ptr)
}
