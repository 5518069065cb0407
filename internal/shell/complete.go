package shell

import (
	"context"
	"strings"

	"github.com/opensandbox/hdfsh/internal/format"
	"github.com/opensandbox/hdfsh/internal/remotepath"
)

// Complete returns the entries of partial's parent directory whose display
// path starts with partial. Candidates keep the parent exactly as typed, so
// relative input completes to relative paths. With dirsOnly, files are
// skipped.
func (e *Executor) Complete(ctx context.Context, partial string, dirsOnly bool) ([]string, error) {
	parent, _ := remotepath.Split(partial)
	dir := strings.TrimRight(parent, remotepath.Separator)
	if dir == "" && parent != "" {
		dir = remotepath.Root
	}

	listing, err := e.fs.ListDirectory(ctx, e.wd.Absolute(dir))
	if err != nil {
		return nil, err
	}
	entries, ok := listing.Entries()
	if !ok {
		return nil, nil
	}

	var candidates []string
	for _, entry := range entries {
		if dirsOnly && !entry.IsDir() {
			continue
		}
		candidate := parent + format.DisplayName(entry)
		if strings.HasPrefix(candidate, partial) {
			candidates = append(candidates, candidate)
		}
	}
	return candidates, nil
}
