package filter

// orderedSet is a set of strings that remembers insertion order.
type orderedSet struct {
	index map[string]int
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: map[string]int{}}
}

// add records v and reports whether it was already present.
func (s *orderedSet) add(v string) bool {
	if _, ok := s.index[v]; ok {
		return true
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	return false
}

// remove deletes v and reports whether it was present.
func (s *orderedSet) remove(v string) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}
	delete(s.index, v)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

func (s *orderedSet) has(v string) bool {
	_, ok := s.index[v]
	return ok
}

func (s *orderedSet) len() int { return len(s.items) }

func (s *orderedSet) clear() {
	s.index = map[string]int{}
	s.items = nil
}

// values returns a copy in insertion order, never nil.
func (s *orderedSet) values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
