package core

import (
	"github.com/xuri/excelize/v2"
)

// SheetBounds scans a sheet for its used rectangle: the highest row and column
// holding a value or a formula. An untouched sheet yields (0, 0).
func SheetBounds(f CalcFile, sheet string) (maxRow, maxCol int) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, 0
	}
	for rIdx, row := range rows {
		rowUsed := false
		for cIdx, val := range row {
			used := val != ""
			if !used {
				// Formula cells without a cached result read back empty.
				cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+1)
				if err == nil {
					if formula, err := f.GetCellFormula(sheet, cell); err == nil && formula != "" {
						used = true
					}
				}
			}
			if used {
				rowUsed = true
				if cIdx+1 > maxCol {
					maxCol = cIdx + 1
				}
			}
		}
		if rowUsed {
			maxRow = rIdx + 1
		}
	}
	return maxRow, maxCol
}

// MergeSpan is one merged rectangle inside the render window. AnchorCol marks
// the single column whose cell carries the merge's paintable content.
type MergeSpan struct {
	Top, Left, Bottom, Right int
	AnchorCol                int
}

// mergeKey addresses a span by its top row and anchor column.
type mergeKey struct {
	row, col int
}

// MergeMap collects the merges intersecting the window [1..rows]x[1..cols],
// keyed by (top row, anchor column). On right-to-left sheets the anchor is the
// rightmost column of the merge; otherwise the leftmost.
func MergeMap(f CalcFile, sheet string, rows, cols int, rtl bool) map[mergeKey]MergeSpan {
	spans := make(map[mergeKey]MergeSpan)
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return spans
	}
	for _, m := range merges {
		left, top, err1 := excelize.CellNameToCoordinates(m.GetStartAxis())
		right, bottom, err2 := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		if top > rows || left > cols || bottom < 1 || right < 1 {
			continue
		}
		anchor := left
		if rtl {
			anchor = right
		}
		spans[mergeKey{row: top, col: anchor}] = MergeSpan{
			Top: top, Left: left, Bottom: bottom, Right: right, AnchorCol: anchor,
		}
	}
	return spans
}

// coveredByMerge reports whether (row, col) lies inside some merge without
// being its anchor cell; such cells are never painted independently.
func coveredByMerge(spans map[mergeKey]MergeSpan, row, col int) bool {
	for _, m := range spans {
		if row >= m.Top && row <= m.Bottom && col >= m.Left && col <= m.Right {
			if m.Top != row || m.AnchorCol != col {
				return true
			}
		}
	}
	return false
}
