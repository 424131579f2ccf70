package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

var (
	// Department letters, an optional separator, exactly three digits.
	courseCodePattern = regexp.MustCompile(`\b([A-Za-z]{4,6})([\s\-_]?)(\d{3})\b`)

	assignmentPattern = regexp.MustCompile(`(?i)\b(assignment|homework|hw|quiz|exam|test|project|lab)\s*#?\s*(\d+)?\b`)

	rawNumberPattern = regexp.MustCompile(`\b\d{1,3}\b`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// commonNumbers are too frequent in dates and counts to be useful identifiers.
var commonNumbers = map[string]bool{
	"1": true, "2": true, "3": true, "10": true, "20": true, "100": true,
}

// assignmentWords look like department codes when followed by a number
// ("quiz 101") but are assignment references.
var assignmentWords = map[string]bool{
	"quiz": true, "exam": true, "test": true,
}

// ExtractIdentifiers scans a query for exact-match tokens. Each category
// is matched independently; lists are deduplicated in first-seen order.
func ExtractIdentifiers(query string) domain.IdentifierSet {
	var set domain.IdentifierSet

	for _, m := range courseCodePattern.FindAllStringSubmatch(query, -1) {
		letters, sep, digits := m[1], m[2], m[3]
		if assignmentWords[strings.ToLower(letters)] {
			continue
		}
		upper := strings.ToUpper(letters)
		capitalised := upper[:1] + strings.ToLower(letters[1:])
		set.CourseCodes = appendUnique(set.CourseCodes, upper+digits, capitalised+digits)
		if sep != "" {
			set.CourseCodes = appendUnique(set.CourseCodes, upper+sep+digits)
		}
		set.CourseNumbers = appendUnique(set.CourseNumbers, digits)
	}

	for _, m := range assignmentPattern.FindAllString(query, -1) {
		set.AssignmentPatterns = appendUnique(set.AssignmentPatterns, whitespacePattern.ReplaceAllString(strings.TrimSpace(m), " "))
	}

	for _, m := range rawNumberPattern.FindAllString(query, -1) {
		if commonNumbers[m] {
			continue
		}
		set.RawNumbers = appendUnique(set.RawNumbers, m)
	}

	return set
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

// perIdentifierFetch is the extra candidate count requested per identifier.
// Free-text stores lose more candidates to filtering than small tables.
// Zero means exact lookups never profit from over-fetching.
func perIdentifierFetch(database string, k int) int {
	switch domain.Table(database) {
	case domain.TableUsers:
		return 0
	case domain.TableGrades:
		return 1
	case domain.TableCourses:
		return 2
	case domain.TableCourseContentSummary, domain.TableCourseContent:
		return k
	default:
		return 2
	}
}

// FetchSize returns how many candidates to request from the vector index.
// Without identifiers it is exactly k. The result never exceeds maxFetch
// unless k itself does.
func FetchSize(database string, k, identifiers, maxFetch int) int {
	if identifiers <= 0 {
		return k
	}
	n := k + perIdentifierFetch(database, k)*identifiers
	if maxFetch > 0 && n > maxFetch {
		n = maxFetch
	}
	if n < k {
		n = k
	}
	return n
}

// NormalizeQuery lower-cases, trims and collapses internal whitespace.
// It is the identity used by both caches.
func NormalizeQuery(query string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(query)), " ")
}
