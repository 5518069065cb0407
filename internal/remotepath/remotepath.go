// Package remotepath resolves "/"-separated remote filesystem paths.
package remotepath

import (
	"fmt"
	"strings"

	"github.com/opensandbox/hdfsh/pkg/types"
)

const (
	Separator = "/"
	Root      = "/"
)

// IsAbs reports whether p starts at the root.
func IsAbs(p string) bool {
	return strings.HasPrefix(p, Separator)
}

// Normalize collapses ".." segments of an absolute path. A ".." at the
// root is dropped. Other segments, including "." and empty ones, are kept
// as they are.
//
// Normalize panics if p is relative.
func Normalize(p string) string {
	if !IsAbs(p) {
		panic(fmt.Errorf("%w: cannot normalize relative path %q", types.ErrInvariantViolation, p))
	}

	segments := strings.Split(p, Separator)
	kept := make([]string, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		if seg == ".." {
			if len(kept) > 0 {
				kept = kept[:len(kept)-1]
			}
			continue
		}
		kept = append(kept, seg)
	}

	return segments[0] + Separator + strings.Join(kept, Separator)
}

// Join appends p to dir with exactly one separator between them.
func Join(dir, p string) string {
	return strings.TrimRight(dir, Separator) + Separator + p
}

// Split cuts p after its last separator. The parent keeps the trailing
// separator so that parent+base == p.
func Split(p string) (parent, base string) {
	i := strings.LastIndex(p, Separator)
	return p[:i+1], p[i+1:]
}
