package promo

import "strings"

// Set is a read-only-after-load collection of promo codes.
type Set struct {
	codes map[string]struct{}
}

// NewSet creates an empty set sized for capacity codes.
func NewSet(capacity int) *Set {
	return &Set{codes: make(map[string]struct{}, capacity)}
}

// Add inserts a code. Codes are compared case-insensitively.
func (s *Set) Add(code string) {
	s.codes[Normalize(code)] = struct{}{}
}

// Contains reports whether code is in the set.
func (s *Set) Contains(code string) bool {
	_, ok := s.codes[Normalize(code)]
	return ok
}

// Size returns the number of distinct codes.
func (s *Set) Size() int {
	return len(s.codes)
}

// Normalize trims and upper-cases a code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
