package validator

import (
	"strconv"
	"strings"
)

// PathSegment is one step of an issue path: a property name or a slice index.
type PathSegment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a property-name segment.
func Key(name string) PathSegment {
	return PathSegment{key: name}
}

// Index returns a slice-index segment.
func Index(i int) PathSegment {
	return PathSegment{index: i, isIndex: true}
}

func (s PathSegment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Issue is a single structured validation failure.
type Issue struct {
	Path    []PathSegment
	Message string
}

// FieldError is the API shape of one validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Format converts issues into field errors, one per issue and in the same
// order. The field is the path joined with "."; an empty path gives "".
func Format(issues []Issue) []FieldError {
	out := make([]FieldError, len(issues))
	for i, issue := range issues {
		segs := make([]string, len(issue.Path))
		for j, seg := range issue.Path {
			segs[j] = seg.String()
		}
		out[i] = FieldError{
			Field:   strings.Join(segs, "."),
			Message: issue.Message,
		}
	}
	return out
}
