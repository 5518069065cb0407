// Package format renders remote metadata as scriptable text.
package format

import (
	"strconv"
	"time"

	"github.com/opensandbox/hdfsh/pkg/types"
)

// TimeLayout is the fixed, locale-independent timestamp layout.
const TimeLayout = "2006-01-02 15:04"

// Size renders a byte count with 1000-based units. Division truncates.
func Size(n int64) string {
	switch {
	case n <= 0:
		return "0"
	case n < 1_000:
		return strconv.FormatInt(n, 10) + "B"
	case n < 1_000_000:
		return strconv.FormatInt(n/1_000, 10) + "K"
	case n < 1_000_000_000:
		return strconv.FormatInt(n/1_000_000, 10) + "M"
	case n < 1_000_000_000_000:
		return strconv.FormatInt(n/1_000_000_000, 10) + "G"
	default:
		return strconv.FormatInt(n/1_000_000_000_000, 10) + "T"
	}
}

// Mode renders the type character followed by the owner, group and other
// rwx triads.
func Mode(t types.FileType, perm uint32) string {
	buf := make([]byte, 0, 10)
	switch t {
	case types.FileTypeDirectory:
		buf = append(buf, 'd')
	case types.FileTypeSymlink:
		buf = append(buf, 'l')
	default:
		buf = append(buf, '-')
	}

	for _, shift := range []uint{6, 3, 0} {
		bits := perm >> shift
		buf = append(buf, bit(bits, 0x4, 'r'), bit(bits, 0x2, 'w'), bit(bits, 0x1, 'x'))
	}
	return string(buf)
}

func bit(bits, mask uint32, c byte) byte {
	if bits&mask != 0 {
		return c
	}
	return '-'
}

// Replication renders a replication factor; 0 means not applicable.
func Replication(r int) string {
	if r == 0 {
		return "-"
	}
	return strconv.Itoa(r)
}

// Timestamp renders epoch milliseconds in loc.
func Timestamp(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(TimeLayout)
}

// DisplayName is the entry name as shown to the user: directories get a
// trailing slash.
func DisplayName(s types.FileStatus) string {
	if s.IsDir() {
		return s.Name + "/"
	}
	return s.Name
}
