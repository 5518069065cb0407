package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opensandbox/hdfsh/pkg/types"
)

// Align selects which side of a cell receives padding.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column is one column of a table: all its cells, top to bottom.
type Column struct {
	Align Align
	Cells []string
}

// WriteColumns pads every cell to its column's widest cell and writes the
// rows with a single space between columns. All columns must have the same
// number of cells.
func WriteColumns(w io.Writer, cols []Column) error {
	if len(cols) == 0 {
		return nil
	}

	padded := make([][]string, len(cols))
	for i, col := range cols {
		width := 0
		for _, cell := range col.Cells {
			width = max(width, len(cell))
		}
		padded[i] = make([]string, len(col.Cells))
		for j, cell := range col.Cells {
			fill := strings.Repeat(" ", width-len(cell))
			if col.Align == AlignRight {
				padded[i][j] = fill + cell
			} else {
				padded[i][j] = cell + fill
			}
		}
	}

	var sb strings.Builder
	row := make([]string, len(cols))
	for j := range cols[0].Cells {
		for i := range cols {
			row[i] = padded[i][j]
		}
		sb.WriteString(strings.Join(row, " "))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteListing writes the "ls" output: a summary line, then one row per
// entry.
func WriteListing(w io.Writer, entries []types.FileStatus, loc *time.Location) error {
	if _, err := fmt.Fprintf(w, "Found %d items\n", len(entries)); err != nil {
		return err
	}

	cols := []Column{
		{Align: AlignLeft},  // mode
		{Align: AlignRight}, // replication
		{Align: AlignLeft},  // owner
		{Align: AlignLeft},  // group
		{Align: AlignRight}, // size
		{Align: AlignRight}, // modification time
		{Align: AlignLeft},  // path
	}
	for _, e := range entries {
		cells := []string{
			Mode(e.Type, e.Permission),
			Replication(e.Replication),
			e.Owner,
			e.Group,
			Size(e.Length),
			Timestamp(e.ModificationTime, loc),
			DisplayName(e),
		}
		for i, c := range cells {
			cols[i].Cells = append(cols[i].Cells, c)
		}
	}
	return WriteColumns(w, cols)
}

// UsageRow is one line of "du" output. Size is already formatted so that
// callers can substitute a placeholder.
type UsageRow struct {
	Size string
	Path string
}

// WriteUsage writes the "du" output: size and path, no header.
func WriteUsage(w io.Writer, rows []UsageRow) error {
	sizes := Column{Align: AlignRight}
	paths := Column{Align: AlignLeft}
	for _, r := range rows {
		sizes.Cells = append(sizes.Cells, r.Size)
		paths.Cells = append(paths.Cells, r.Path)
	}
	return WriteColumns(w, []Column{sizes, paths})
}
