package domain

import "strings"

// IdentifierSet holds exact-match tokens extracted from a query.
type IdentifierSet struct {
	// CourseCodes holds surface forms such as "CMPSC461" and "Cmpsc461".
	CourseCodes []string `json:"course_codes"`

	// CourseNumbers holds the bare number of each course code.
	CourseNumbers []string `json:"course_numbers"`

	// AssignmentPatterns holds matches such as "assignment 1" or "hw#3".
	AssignmentPatterns []string `json:"assignment_patterns"`

	// RawNumbers holds standalone numbers outside the stoplist.
	RawNumbers []string `json:"raw_numbers"`
}

// Count returns the total number of identifiers across all lists.
func (s IdentifierSet) Count() int {
	return len(s.CourseCodes) + len(s.CourseNumbers) + len(s.AssignmentPatterns) + len(s.RawNumbers)
}

// IsEmpty returns true when nothing was extracted.
func (s IdentifierSet) IsEmpty() bool {
	return s.Count() == 0
}

// FilterForms returns the lower-cased surface forms used for exact-match
// filtering. Bare course numbers are left out; they over-match small integers.
func (s IdentifierSet) FilterForms() []string {
	seen := make(map[string]bool)
	var forms []string
	for _, list := range [][]string{s.CourseCodes, s.AssignmentPatterns, s.RawNumbers} {
		for _, v := range list {
			f := strings.ToLower(strings.TrimSpace(v))
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			forms = append(forms, f)
		}
	}
	return forms
}
