package router

import "strings"

// idSegment is the position of {id} in /api/{ns}/users/{id}
const idSegment = 4

// ExtractID returns the raw identifier segment of an item path such as
// /api/x/users/42 by position alone. Anything after the first whitespace or
// '?' in the segment is dropped. The result is not validated; callers must
// treat an empty or non-numeric value as a parse failure.
func ExtractID(path string) string {
	segments := strings.Split(path, "/")
	if len(segments) <= idSegment {
		return ""
	}

	fields := strings.Fields(segments[idSegment])
	if len(fields) == 0 {
		return ""
	}
	id, _, _ := strings.Cut(fields[0], "?")
	return id
}
