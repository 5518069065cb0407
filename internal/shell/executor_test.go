package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensandbox/hdfsh/internal/workdir"
	"github.com/opensandbox/hdfsh/pkg/types"
)

const cwdFile = "/state/cwd"

func newTestExecutor(t *testing.T, fs Filesystem, opts ...Option) (*Executor, *workdir.Store) {
	t.Helper()
	store := workdir.NewStore(afero.NewMemMapFs(), cwdFile, "bob")
	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	return NewExecutor(fs, store, opts...), store
}

func dir(name string) types.FileStatus {
	return types.FileStatus{Name: name, Type: types.FileTypeDirectory, Permission: 0o755, Owner: "bob", Group: "hadoop"}
}

func file(name string, length int64) types.FileStatus {
	return types.FileStatus{Name: name, Type: types.FileTypeFile, Permission: 0o644, Owner: "bob", Group: "hadoop", Length: length, Replication: 3}
}

func TestCd_PersistsExistingDirectory(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/user/bob/data"] = nil
	e, store := newTestExecutor(t, fs)

	require.NoError(t, e.Cd(context.Background(), "data"))
	assert.Equal(t, "/user/bob/data", store.Get())

	fs.dirs["/tmp"] = []types.FileStatus{dir("x")}
	require.NoError(t, e.Cd(context.Background(), "/tmp/../tmp"))
	assert.Equal(t, "/tmp", store.Get())
}

func TestCd_NonexistentLeavesWorkingDirUnchanged(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/data"] = nil
	e, store := newTestExecutor(t, fs)
	require.NoError(t, e.Cd(context.Background(), "/data"))

	err := e.Cd(context.Background(), "nonexistent")

	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
	assert.Equal(t, "File/directory does not exist: /data/nonexistent", err.Error())
	assert.Equal(t, "/data", store.Get())
}

func TestCd_NoArgumentStaysInWorkingDir(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/user/bob"] = nil
	e, store := newTestExecutor(t, fs)

	require.NoError(t, e.Cd(context.Background(), ""))
	assert.Equal(t, "/user/bob", store.Get())
}

func TestLs_RendersListing(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/user/bob"] = []types.FileStatus{dir("logs"), file("a.txt", 1500)}
	e, _ := newTestExecutor(t, fs)

	var out bytes.Buffer
	require.NoError(t, e.Ls(context.Background(), &out, ""))

	want := "Found 2 items\n" +
		"drwxr-xr-x - bob hadoop  0 1970-01-01 00:00 logs/\n" +
		"-rw-r--r-- 3 bob hadoop 1K 1970-01-01 00:00 a.txt\n"
	assert.Equal(t, want, out.String())
}

func TestLs_AbsentPathIsNotFound(t *testing.T) {
	e, _ := newTestExecutor(t, newFakeFS())

	var out bytes.Buffer
	err := e.Ls(context.Background(), &out, "/missing")

	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
	assert.Equal(t, "File/directory does not exist: /missing", err.Error())
	assert.Empty(t, out.String())
}

func TestLs_RemoteErrorPropagates(t *testing.T) {
	e, _ := newTestExecutor(t, &failingListFS{err: &types.RemoteError{Subject: types.SubjectAccessDenied, Body: "Permission denied"}})

	err := e.Ls(context.Background(), &bytes.Buffer{}, "/secret")

	assert.True(t, types.IsAccessDenied(err))
}

func TestDu_AccessDeniedEntryShowsPlaceholder(t *testing.T) {
	for _, n := range []int{1, 4} {
		fs := newFakeFS()
		fs.dirs["/data"] = []types.FileStatus{dir("a"), dir("secret"), file("b.txt", 999)}
		fs.sizes["/data/a"] = 12_000
		fs.sizes["/data/b.txt"] = 999
		fs.summaryErr["/data/secret"] = &types.RemoteError{Subject: types.SubjectAccessDenied, Body: "Permission denied"}
		e, _ := newTestExecutor(t, fs, WithDuConcurrency(n))

		var out bytes.Buffer
		require.NoError(t, e.Du(context.Background(), &out, "/data"))

		want := " 12K a/     \n" +
			"   - secret/\n" +
			"999B b.txt  \n"
		assert.Equal(t, want, out.String(), "concurrency %d", n)
	}
}

func TestDu_FileReportsItself(t *testing.T) {
	fs := newFakeFS()
	entry := file("f.txt", 5)
	entry.Path = "/data/f.txt"
	fs.dirs["/data/f.txt"] = []types.FileStatus{entry}
	fs.sizes["/data/f.txt"] = 5
	fs.summaryErr["/data/f.txt/f.txt"] = &types.RemoteError{Subject: types.SubjectNotFound, Body: "File does not exist: /data/f.txt/f.txt"}
	e, _ := newTestExecutor(t, fs)

	var out bytes.Buffer
	require.NoError(t, e.Du(context.Background(), &out, "/data/f.txt"))

	assert.Equal(t, "5B f.txt\n", out.String())
	assert.Contains(t, fs.calls, "summary /data/f.txt")
}

func TestDu_OtherFailureAborts(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/data"] = []types.FileStatus{dir("a"), dir("broken")}
	fs.summaryErr["/data/broken"] = &types.RemoteError{Subject: types.SubjectIO, Body: "disk on fire"}
	e, _ := newTestExecutor(t, fs)

	var out bytes.Buffer
	err := e.Du(context.Background(), &out, "/data")

	require.Error(t, err)
	assert.Equal(t, types.KindGenericRemoteFailure, types.KindOf(err))
	assert.Empty(t, out.String())
}

func TestDu_AbsentPathIsNotFound(t *testing.T) {
	e, _ := newTestExecutor(t, newFakeFS())

	err := e.Du(context.Background(), &bytes.Buffer{}, "gone")

	assert.Equal(t, "File/directory does not exist: /user/bob/gone", err.Error())
}

func TestMkdir(t *testing.T) {
	fs := newFakeFS()
	e, _ := newTestExecutor(t, fs)

	var out bytes.Buffer
	require.NoError(t, e.Mkdir(context.Background(), &out, "a/b", true))
	require.NoError(t, e.Mkdir(context.Background(), &out, "/c", false))

	assert.Empty(t, out.String())
	assert.Equal(t, []string{"mkdir -p /user/bob/a/b", "mkdir /c"}, fs.calls)
}

func TestMkdir_SoftFailure(t *testing.T) {
	fs := newFakeFS()
	fs.mkdirResult = false
	e, _ := newTestExecutor(t, fs)

	var out bytes.Buffer
	require.NoError(t, e.Mkdir(context.Background(), &out, "x", false))
	assert.Equal(t, "mkdir: failed to create directory '/user/bob/x'\n", out.String())

	fs.mkdirErr = &types.RemoteError{Subject: types.SubjectAccessDenied, Body: "Permission denied"}
	out.Reset()
	require.NoError(t, e.Mkdir(context.Background(), &out, "y", false))
	assert.Equal(t, "mkdir: failed to create directory '/user/bob/y'\n", out.String())
}

func TestRm(t *testing.T) {
	fs := newFakeFS()
	e, _ := newTestExecutor(t, fs)

	var out bytes.Buffer
	require.NoError(t, e.Rm(context.Background(), &out, "old", true))
	assert.Empty(t, out.String())
	assert.Equal(t, []string{"rm -r /user/bob/old"}, fs.calls)
}

func TestRm_SoftFailure(t *testing.T) {
	fs := newFakeFS()
	fs.deleteResult = false
	e, _ := newTestExecutor(t, fs)

	var out bytes.Buffer
	require.NoError(t, e.Rm(context.Background(), &out, "/full", false))
	assert.Equal(t, "rm: failed to remove '/full'\n", out.String())

	fs.deleteErr = errors.New("connection reset")
	out.Reset()
	require.NoError(t, e.Rm(context.Background(), &out, "/full", false))
	assert.Equal(t, "rm: failed to remove '/full'\n", out.String())
}

func TestMv_ResolvesBothPaths(t *testing.T) {
	fs := newFakeFS()
	e, _ := newTestExecutor(t, fs)

	require.NoError(t, e.Mv(context.Background(), "a", "/tmp/b", true))
	assert.Equal(t, []string{"mv -f /user/bob/a /tmp/b"}, fs.calls)
}

func TestMv_FailureIsHard(t *testing.T) {
	fs := newFakeFS()
	remote := &types.RemoteError{Subject: types.SubjectAlreadyExists, Body: "rename destination /user/bob/b already exists"}
	fs.renameErr = remote
	e, _ := newTestExecutor(t, fs)

	err := e.Mv(context.Background(), "a", "b", false)

	assert.Same(t, remote, err)
	assert.Equal(t, "rename destination /user/bob/b already exists", types.Render(err))
}

func TestPwd(t *testing.T) {
	e, store := newTestExecutor(t, newFakeFS())

	var out bytes.Buffer
	require.NoError(t, e.Pwd(&out))
	assert.Equal(t, "/user/bob\n", out.String())

	require.NoError(t, store.Set("/tmp/./x"))
	out.Reset()
	require.NoError(t, e.Pwd(&out))
	assert.Equal(t, "/tmp/./x\n", out.String())
}

type failingListFS struct {
	fakeFS
	err error
}

func (f *failingListFS) ListDirectory(context.Context, string) (types.Listing, error) {
	return types.Listing{}, f.err
}
