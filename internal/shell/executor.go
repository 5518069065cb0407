// Package shell implements the semantics of the remote filesystem
// commands on top of an abstract Filesystem.
package shell

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opensandbox/hdfsh/internal/format"
	"github.com/opensandbox/hdfsh/internal/logging"
	"github.com/opensandbox/hdfsh/internal/remotepath"
	"github.com/opensandbox/hdfsh/internal/workdir"
	"github.com/opensandbox/hdfsh/pkg/types"
)

// Filesystem is the remote namespace the commands operate on.
type Filesystem interface {
	// ListDirectory lists path. A missing path yields types.Absent().
	ListDirectory(ctx context.Context, path string) (types.Listing, error)
	ContentSummary(ctx context.Context, path string) (types.ContentSummary, error)
	CreateDirectory(ctx context.Context, path string, createParents bool) (bool, error)
	Delete(ctx context.Context, path string, recursive bool) (bool, error)
	Rename(ctx context.Context, src, dst string, overwrite bool) error
}

// Executor runs one command at a time against a Filesystem.
type Executor struct {
	fs     Filesystem
	wd     *workdir.Store
	logger *zap.Logger

	loc           *time.Location
	duConcurrency int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for soft failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithLocation sets the time zone for listing timestamps.
func WithLocation(loc *time.Location) Option {
	return func(e *Executor) { e.loc = loc }
}

// WithDuConcurrency bounds the number of concurrent content-summary calls
// issued by Du. Values below 1 mean sequential.
func WithDuConcurrency(n int) Option {
	return func(e *Executor) { e.duConcurrency = max(n, 1) }
}

// NewExecutor creates an executor over fs, resolving paths with wd.
func NewExecutor(fs Filesystem, wd *workdir.Store, opts ...Option) *Executor {
	e := &Executor{
		fs:            fs,
		wd:            wd,
		logger:        logging.NewNop(),
		loc:           time.Local,
		duConcurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WorkingDir returns the current working directory.
func (e *Executor) WorkingDir() string {
	return e.wd.Get()
}

// getListingOrFail lists path and turns absence into a NotFound error.
func (e *Executor) getListingOrFail(ctx context.Context, path string) ([]types.FileStatus, error) {
	listing, err := e.fs.ListDirectory(ctx, path)
	if err != nil {
		return nil, err
	}
	entries, ok := listing.Entries()
	if !ok {
		return nil, types.NewNotFound(path)
	}
	return entries, nil
}

// Cd changes the working directory to path after checking that it can be
// listed.
func (e *Executor) Cd(ctx context.Context, path string) error {
	target := e.wd.Absolute(path)
	if _, err := e.getListingOrFail(ctx, target); err != nil {
		return err
	}
	return e.wd.Set(target)
}

// Ls writes the listing of path.
func (e *Executor) Ls(ctx context.Context, w io.Writer, path string) error {
	target := e.wd.Absolute(path)
	entries, err := e.getListingOrFail(ctx, target)
	if err != nil {
		return err
	}
	return format.WriteListing(w, entries, e.loc)
}

// Du writes the size of every entry of path. Entries whose summary is
// denied show "-"; any other failure aborts before output.
func (e *Executor) Du(ctx context.Context, w io.Writer, path string) error {
	target := e.wd.Absolute(path)
	entries, err := e.getListingOrFail(ctx, target)
	if err != nil {
		return err
	}

	rows := make([]format.UsageRow, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.duConcurrency)
	for i, entry := range entries {
		g.Go(func() error {
			rows[i].Path = format.DisplayName(entry)
			summary, err := e.fs.ContentSummary(gctx, entryPath(target, entry))
			switch {
			case types.IsAccessDenied(err):
				rows[i].Size = "-"
			case err != nil:
				return err
			default:
				rows[i].Size = format.Size(summary.Length)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return format.WriteUsage(w, rows)
}

// entryPath is the absolute path of an entry listed under dir. Listing a
// file yields the file itself, which only its own Path identifies.
func entryPath(dir string, entry types.FileStatus) string {
	if entry.Path != "" {
		return entry.Path
	}
	return remotepath.Join(dir, entry.Name)
}

// Mkdir creates path. Failure is reported on w and is not an error.
func (e *Executor) Mkdir(ctx context.Context, w io.Writer, path string, parents bool) error {
	target := e.wd.Absolute(path)
	ok, err := e.fs.CreateDirectory(ctx, target, parents)
	if err != nil {
		e.logger.Warn("create directory failed", zap.String("path", target), zap.Error(err))
	}
	if err != nil || !ok {
		_, werr := fmt.Fprintf(w, "mkdir: failed to create directory '%s'\n", target)
		return werr
	}
	return nil
}

// Rm deletes path. Failure is reported on w and is not an error.
func (e *Executor) Rm(ctx context.Context, w io.Writer, path string, recursive bool) error {
	target := e.wd.Absolute(path)
	ok, err := e.fs.Delete(ctx, target, recursive)
	if err != nil {
		e.logger.Warn("delete failed", zap.String("path", target), zap.Error(err))
	}
	if err != nil || !ok {
		_, werr := fmt.Fprintf(w, "rm: failed to remove '%s'\n", target)
		return werr
	}
	return nil
}

// Mv renames src to dst. Remote failures are returned unchanged.
func (e *Executor) Mv(ctx context.Context, src, dst string, overwrite bool) error {
	return e.fs.Rename(ctx, e.wd.Absolute(src), e.wd.Absolute(dst), overwrite)
}

// Pwd writes the working directory.
func (e *Executor) Pwd(w io.Writer) error {
	_, err := fmt.Fprintln(w, e.wd.Get())
	return err
}
