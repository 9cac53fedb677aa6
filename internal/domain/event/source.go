package event

// Candidate couples a registered prototype value with the source location
// it was registered from, used in diagnostics when a candidate turns out
// to be broken.
type Candidate struct {
	Prototype  any
	SourcePath string
}

// Source enumerates candidate types in registration order. It replaces
// runtime class scanning: each process declares its event catalog
// explicitly and the registry builder iterates that declaration.
type Source interface {
	Candidates() []Candidate
}

// SourceSet is the default Source implementation, an ordered registration
// list.
type SourceSet struct {
	candidates []Candidate
}

func NewSource() *SourceSet {
	return &SourceSet{}
}

// Add registers a prototype. Registration order is preserved; on routing
// key collisions the later registration wins.
func (s *SourceSet) Add(prototype any, sourcePath string) *SourceSet {
	s.candidates = append(s.candidates, Candidate{
		Prototype:  prototype,
		SourcePath: sourcePath,
	})
	return s
}

func (s *SourceSet) Candidates() []Candidate {
	out := make([]Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}
