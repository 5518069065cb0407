package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/opensandbox/hdfsh/internal/remotepath"
	"github.com/opensandbox/hdfsh/pkg/types"
)

// fileStatus is a WebHDFS FileStatus JSON object.
type fileStatus struct {
	PathSuffix       string `json:"pathSuffix"`
	Type             string `json:"type"`
	Permission       string `json:"permission"` // octal
	Owner            string `json:"owner"`
	Group            string `json:"group"`
	Length           int64  `json:"length"`
	ModificationTime int64  `json:"modificationTime"`
	Replication      int    `json:"replication"`
}

type listStatusResponse struct {
	FileStatuses struct {
		FileStatus []fileStatus `json:"FileStatus"`
	} `json:"FileStatuses"`
}

type fileStatusResponse struct {
	FileStatus fileStatus `json:"FileStatus"`
}

type contentSummaryResponse struct {
	ContentSummary struct {
		Length         int64 `json:"length"`
		FileCount      int64 `json:"fileCount"`
		DirectoryCount int64 `json:"directoryCount"`
		SpaceConsumed  int64 `json:"spaceConsumed"`
	} `json:"ContentSummary"`
}

type booleanResponse struct {
	Boolean bool `json:"boolean"`
}

func (s fileStatus) toStatus(name, fullPath string) types.FileStatus {
	perm, _ := strconv.ParseUint(s.Permission, 8, 32)

	t := types.FileTypeFile
	switch s.Type {
	case "DIRECTORY":
		t = types.FileTypeDirectory
	case "SYMLINK":
		t = types.FileTypeSymlink
	}

	return types.FileStatus{
		Name:             name,
		Path:             fullPath,
		Type:             t,
		Permission:       uint32(perm) & 0o777,
		Owner:            s.Owner,
		Group:            s.Group,
		Length:           s.Length,
		ModificationTime: s.ModificationTime,
		Replication:      s.Replication,
	}
}

func isNotFound(err error) bool {
	var re *types.RemoteError
	return errors.As(err, &re) && re.Subject == types.SubjectNotFound
}

// ListDirectory lists p. Listing a file yields that file alone, named by
// its base name and carrying p as its path.
func (c *Client) ListDirectory(ctx context.Context, p string) (types.Listing, error) {
	var resp listStatusResponse
	if err := c.doRequest(ctx, http.MethodGet, "LISTSTATUS", p, nil, &resp); err != nil {
		if isNotFound(err) {
			return types.Absent(), nil
		}
		return types.Listing{}, err
	}

	entries := make([]types.FileStatus, 0, len(resp.FileStatuses.FileStatus))
	for _, s := range resp.FileStatuses.FileStatus {
		if s.PathSuffix == "" {
			entries = append(entries, s.toStatus(path.Base(p), p))
			continue
		}
		entries = append(entries, s.toStatus(s.PathSuffix, remotepath.Join(p, s.PathSuffix)))
	}
	return types.Found(entries), nil
}

// stat returns the status of p, or ok=false if it does not exist.
func (c *Client) stat(ctx context.Context, p string) (types.FileStatus, bool, error) {
	var resp fileStatusResponse
	if err := c.doRequest(ctx, http.MethodGet, "GETFILESTATUS", p, nil, &resp); err != nil {
		if isNotFound(err) {
			return types.FileStatus{}, false, nil
		}
		return types.FileStatus{}, false, err
	}
	return resp.FileStatus.toStatus(path.Base(p), p), true, nil
}

// ContentSummary returns the aggregate size of the subtree at p.
func (c *Client) ContentSummary(ctx context.Context, p string) (types.ContentSummary, error) {
	var resp contentSummaryResponse
	if err := c.doRequest(ctx, http.MethodGet, "GETCONTENTSUMMARY", p, nil, &resp); err != nil {
		return types.ContentSummary{}, err
	}
	cs := resp.ContentSummary
	return types.ContentSummary{
		Length:         cs.Length,
		FileCount:      cs.FileCount,
		DirectoryCount: cs.DirectoryCount,
		SpaceConsumed:  cs.SpaceConsumed,
	}, nil
}

// CreateDirectory creates p. WebHDFS always creates missing parents, so
// without createParents the parent is checked first and a missing parent
// reports false.
func (c *Client) CreateDirectory(ctx context.Context, p string, createParents bool) (bool, error) {
	if !createParents {
		parent, ok, err := c.stat(ctx, path.Dir(p))
		if err != nil {
			return false, err
		}
		if !ok || !parent.IsDir() {
			return false, nil
		}
		if _, exists, err := c.stat(ctx, p); err != nil {
			return false, err
		} else if exists {
			return false, &types.RemoteError{Subject: types.SubjectAlreadyExists, Body: p + " already exists"}
		}
	}

	var resp booleanResponse
	params := url.Values{"permission": {"755"}}
	if err := c.doRequest(ctx, http.MethodPut, "MKDIRS", p, params, &resp); err != nil {
		return false, err
	}
	return resp.Boolean, nil
}

// Delete removes p. A non-empty directory needs recursive.
func (c *Client) Delete(ctx context.Context, p string, recursive bool) (bool, error) {
	var resp booleanResponse
	params := url.Values{"recursive": {strconv.FormatBool(recursive)}}
	if err := c.doRequest(ctx, http.MethodDelete, "DELETE", p, params, &resp); err != nil {
		return false, err
	}
	return resp.Boolean, nil
}

// Rename moves src to dst. With overwrite, an existing non-directory dst
// is replaced by the namenode in the same RENAME call, so a failed move
// leaves dst untouched. A rename the namenode refuses becomes a
// RemoteError.
func (c *Client) Rename(ctx context.Context, src, dst string, overwrite bool) error {
	if overwrite {
		existing, ok, err := c.stat(ctx, dst)
		if err != nil {
			return err
		}
		if ok && !existing.IsDir() {
			params := url.Values{
				"destination":   {dst},
				"renameoptions": {"OVERWRITE"},
			}
			// The options form of RENAME answers with an empty body and
			// reports failures as RemoteExceptions.
			return c.doRequest(ctx, http.MethodPut, "RENAME", src, params, nil)
		}
	}

	var resp booleanResponse
	params := url.Values{"destination": {dst}}
	if err := c.doRequest(ctx, http.MethodPut, "RENAME", src, params, &resp); err != nil {
		return err
	}
	if resp.Boolean {
		return nil
	}

	if _, ok, err := c.stat(ctx, dst); err == nil && ok {
		return &types.RemoteError{
			Subject: types.SubjectAlreadyExists,
			Body:    fmt.Sprintf("rename destination %s already exists", dst),
		}
	}
	return &types.RemoteError{
		Subject: types.SubjectIO,
		Body:    fmt.Sprintf("Failed to rename %s to %s", src, dst),
	}
}
