package types

// FileType is the kind of a remote namespace entry.
type FileType int

const (
	FileTypeFile FileType = iota
	FileTypeDirectory
	FileTypeSymlink
)

func (t FileType) String() string {
	switch t {
	case FileTypeDirectory:
		return "DIRECTORY"
	case FileTypeSymlink:
		return "SYMLINK"
	default:
		return "FILE"
	}
}

// FileStatus is the remote metadata for one entry of a directory listing.
type FileStatus struct {
	Name             string   `json:"name"` // relative to the listed directory
	Path             string   `json:"path"` // absolute; empty when the lister does not know it
	Type             FileType `json:"type"`
	Permission       uint32   `json:"permission"` // 9-bit rwx triads
	Owner            string   `json:"owner"`
	Group            string   `json:"group"`
	Length           int64    `json:"length"`
	ModificationTime int64    `json:"modificationTime"` // epoch milliseconds
	Replication      int      `json:"replication"`      // 0 when not applicable
}

// IsDir reports whether the entry is a directory.
func (s FileStatus) IsDir() bool {
	return s.Type == FileTypeDirectory
}

// ContentSummary holds aggregate usage for a subtree.
type ContentSummary struct {
	Length         int64 `json:"length"`
	FileCount      int64 `json:"fileCount"`
	DirectoryCount int64 `json:"directoryCount"`
	SpaceConsumed  int64 `json:"spaceConsumed"`
}

// Listing is the result of listing a remote path: either the entries that
// were found, or an explicit absence.
type Listing struct {
	entries []FileStatus
	found   bool
}

// Found returns a listing for a path that exists.
func Found(entries []FileStatus) Listing {
	return Listing{entries: entries, found: true}
}

// Absent returns a listing for a path that does not exist.
func Absent() Listing {
	return Listing{}
}

// Entries returns the listed entries and whether the path existed.
func (l Listing) Entries() ([]FileStatus, bool) {
	return l.entries, l.found
}
