package shell

import (
	"context"
	"sync"

	"github.com/opensandbox/hdfsh/pkg/types"
)

// fakeFS is an in-memory Filesystem. Directories map to their entries;
// errors can be injected per path.
type fakeFS struct {
	mu sync.Mutex

	dirs       map[string][]types.FileStatus
	sizes      map[string]int64
	summaryErr map[string]error

	mkdirResult  bool
	mkdirErr     error
	deleteResult bool
	deleteErr    error
	renameErr    error

	calls []string
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		dirs:         map[string][]types.FileStatus{},
		sizes:        map[string]int64{},
		summaryErr:   map[string]error{},
		mkdirResult:  true,
		deleteResult: true,
	}
}

func (f *fakeFS) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeFS) ListDirectory(_ context.Context, path string) (types.Listing, error) {
	f.record("list " + path)
	entries, ok := f.dirs[path]
	if !ok {
		return types.Absent(), nil
	}
	return types.Found(entries), nil
}

func (f *fakeFS) ContentSummary(_ context.Context, path string) (types.ContentSummary, error) {
	f.record("summary " + path)
	if err := f.summaryErr[path]; err != nil {
		return types.ContentSummary{}, err
	}
	return types.ContentSummary{Length: f.sizes[path]}, nil
}

func (f *fakeFS) CreateDirectory(_ context.Context, path string, createParents bool) (bool, error) {
	if createParents {
		f.record("mkdir -p " + path)
	} else {
		f.record("mkdir " + path)
	}
	return f.mkdirResult, f.mkdirErr
}

func (f *fakeFS) Delete(_ context.Context, path string, recursive bool) (bool, error) {
	if recursive {
		f.record("rm -r " + path)
	} else {
		f.record("rm " + path)
	}
	return f.deleteResult, f.deleteErr
}

func (f *fakeFS) Rename(_ context.Context, src, dst string, overwrite bool) error {
	if overwrite {
		f.record("mv -f " + src + " " + dst)
	} else {
		f.record("mv " + src + " " + dst)
	}
	return f.renameErr
}
