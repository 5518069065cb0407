package remotepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensandbox/hdfsh/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/user/bob", "/user/bob"},
		{"/a/b/../c", "/a/c"},
		{"/../a", "/a"},
		{"/a/..", "/"},
		{"/a/../../..", "/"},
		{"/a/b/../../c/d/..", "/c"},
		// "." and empty segments are not collapsed.
		{"/a/./b", "/a/./b"},
		{"/a//b", "/a//b"},
		{"/a/.//../b", "/a/./b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_IdentityWithoutParentSegments(t *testing.T) {
	for _, p := range []string{"/", "/tmp", "/user/bob/data", "/a/./b", "/x//y"} {
		assert.Equal(t, p, Normalize(p))
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, p := range []string{"/a/b/../c", "/../../x", "/a/./../b/..", "/q/w/e/../../r"} {
		once := Normalize(p)
		assert.Equal(t, once, Normalize(once), p)
	}
}

func TestNormalize_RelativePanics(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.Equal(t, types.KindInvariantViolation, types.KindOf(err))
	}()

	Normalize("relative/path")
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/user/bob/x", Join("/user/bob", "x"))
	assert.Equal(t, "/user/bob/x", Join("/user/bob/", "x"))
	assert.Equal(t, "/x", Join("/", "x"))
}

func TestSplit(t *testing.T) {
	parent, base := Split("data/par")
	assert.Equal(t, "data/", parent)
	assert.Equal(t, "par", base)

	parent, base = Split("par")
	assert.Equal(t, "", parent)
	assert.Equal(t, "par", base)

	parent, base = Split("/tmp/")
	assert.Equal(t, "/tmp/", parent)
	assert.Equal(t, "", base)
}
