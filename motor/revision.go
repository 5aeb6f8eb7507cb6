package motor

import (
	"fmt"
	"strconv"
	"strings"
)

// Class is the significance of an edit, which decides how the revision
// number moves.
type Class string

const (
	// ClassMajor bumps the major component and resets minor: 1.3 -> 2.0.
	ClassMajor Class = "major"
	// ClassMinor bumps the minor component: 1.3 -> 1.4.
	ClassMinor Class = "minor"
	// ClassOverwrite leaves the revision number in place. Used for
	// trivial edits (notes, sort order).
	ClassOverwrite Class = "overwrite"
)

// Revision is a two-component "major.minor" version tag. It is a value
// type with defined parsing, ordering, and increment semantics - never
// compare or sort the string form, "2.10" orders after "2.9".
type Revision struct {
	Major int
	Minor int
}

// ParseRevision parses a "major.minor" string.
func ParseRevision(s string) (Revision, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return Revision{}, fmt.Errorf("malformed revision %q: want major.minor", s)
	}
	maj, err := strconv.Atoi(major)
	if err != nil {
		return Revision{}, fmt.Errorf("malformed revision %q: %w", s, err)
	}
	min, err := strconv.Atoi(minor)
	if err != nil {
		return Revision{}, fmt.Errorf("malformed revision %q: %w", s, err)
	}
	if maj < 0 || min < 0 {
		return Revision{}, fmt.Errorf("malformed revision %q: negative component", s)
	}
	return Revision{Major: maj, Minor: min}, nil
}

func (r Revision) String() string {
	return fmt.Sprintf("%d.%d", r.Major, r.Minor)
}

// Bump returns the next revision for an edit of the given class.
func (r Revision) Bump(c Class) Revision {
	switch c {
	case ClassMajor:
		return Revision{Major: r.Major + 1, Minor: 0}
	case ClassMinor:
		return Revision{Major: r.Major, Minor: r.Minor + 1}
	default:
		return r
	}
}

// Less orders revisions by the parsed pair.
func (r Revision) Less(o Revision) bool {
	if r.Major != o.Major {
		return r.Major < o.Major
	}
	return r.Minor < o.Minor
}

func (r Revision) Equal(o Revision) bool { return r == o }
