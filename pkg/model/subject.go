package model

import "strings"

// Subject is a coarse topic tag on questions and memory records. It is a
// scoring hint, never a hard filter: records of other subjects still compete.
type Subject string

const (
	SubjectMathematics Subject = "mathematics"
	SubjectPhysics     Subject = "physics"
	SubjectChemistry   Subject = "chemistry"
	SubjectBiology     Subject = "biology"
)

// NormalizeSubject lowercases and trims a raw subject string
func NormalizeSubject(s string) Subject {
	return Subject(strings.ToLower(strings.TrimSpace(s)))
}

// Matches reports whether two subject tags agree, ignoring case and blanks.
// Empty on either side never matches.
func (s Subject) Matches(other Subject) bool {
	if s == "" || other == "" {
		return false
	}
	return strings.EqualFold(string(s), string(other))
}
