package annotate

import (
	"sort"
	"sync"
)

// Store is an in-memory Host. It backs the terminal, SARIF and language
// server outputs, which all render a finished set of annotations.
type Store struct {
	mu         sync.Mutex
	namespaces map[string]Namespace
	entries    map[key][]Annotation
}

type key struct {
	buf Buffer
	ns  Namespace
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		namespaces: make(map[string]Namespace),
		entries:    make(map[key][]Annotation),
	}
}

// CreateNamespace implements Host.
func (s *Store) CreateNamespace(name string) (Namespace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.namespaces[name]; ok {
		return ns, nil
	}
	ns := Namespace(len(s.namespaces) + 1)
	s.namespaces[name] = ns
	return ns, nil
}

// Namespaces returns the registered namespaces by name.
func (s *Store) Namespaces() map[string]Namespace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Namespace, len(s.namespaces))
	for k, v := range s.namespaces {
		out[k] = v
	}
	return out
}

// ClearNamespace implements Host.
func (s *Store) ClearNamespace(buf Buffer, ns Namespace, start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{buf, ns}
	kept := s.entries[k][:0]
	for _, a := range s.entries[k] {
		if a.Line >= start && (end < 0 || a.Line < end) {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		delete(s.entries, k)
		return nil
	}
	s.entries[k] = kept
	return nil
}

// SetAnnotation implements Host.
func (s *Store) SetAnnotation(buf Buffer, ns Namespace, line int, segments []Segment, _ Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{buf, ns}
	segs := append([]Segment(nil), segments...)
	s.entries[k] = append(s.entries[k], Annotation{Line: line, Segments: segs})
	return nil
}

// Annotations returns the annotations of buf in ns ordered by line, keeping
// write order within a line.
func (s *Store) Annotations(buf Buffer, ns Namespace) []Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Annotation(nil), s.entries[key{buf, ns}]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}
