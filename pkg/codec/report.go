package codec

import (
	"fmt"
	"strings"
)

// ProblemKind classifies a problem found while encoding or decoding.
type ProblemKind string

const (
	UnknownType ProblemKind = "unknown_type"
	BadValue    ProblemKind = "bad_value"
)

// Problem is one element the codec could not process.
type Problem struct {
	Kind   ProblemKind
	Path   string
	Detail string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s: %s", p.Path, p.Kind, p.Detail)
}

// Report collects the problems of one encode or decode run.
// A non-empty report means the document was processed partially.
type Report struct {
	Problems []Problem
}

// Addf records a problem with a formatted detail.
func (r *Report) Addf(kind ProblemKind, path, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{
		Kind:   kind,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
	})
}

// Empty reports whether no problems were found.
func (r *Report) Empty() bool {
	return len(r.Problems) == 0
}

// Count returns the number of problems of the given kind.
func (r *Report) Count(kind ProblemKind) int {
	n := 0
	for _, p := range r.Problems {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Report) String() string {
	lines := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		lines[i] = p.String()
	}
	return strings.Join(lines, "\n")
}

func errWrongEntity(field string, v any) error {
	return fmt.Errorf("field %s: unexpected entity %T", field, v)
}

func childPath(parent, name string, index int) string {
	if index < 0 {
		return parent + "/" + name
	}
	return fmt.Sprintf("%s/%s[%d]", parent, name, index)
}
