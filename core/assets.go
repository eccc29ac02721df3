package core

import (
	"fmt"
	"strings"

	"valugen/config"
)

// AssetRow is one asset record read from the data sheet.
type AssetRow struct {
	Index    int // 1-based data sheet row
	Number   string
	Name     string
	Location string
}

// Plate is one asset within a location.
type Plate struct {
	Number string
	Name   string
}

// Location groups the plates found under one location name, in row order.
type Location struct {
	Name   string
	Plates []Plate
}

// AssetTable is the in-memory view of the data sheet's asset rows. Row 1 is
// assumed to be a header and skipped.
type AssetTable struct {
	Rows []AssetRow
}

// ReadAssetTable loads asset rows from the given sheet using the profile's
// column mapping. Rows without both a name and a location are dropped.
func ReadAssetTable(f CalcFile, sheet string, cols config.AssetColumns) (*AssetTable, error) {
	maxRow, _ := SheetBounds(f, sheet)
	if maxRow == 0 {
		return nil, fmt.Errorf("sheet %s holds no asset rows", sheet)
	}

	table := &AssetTable{}
	for r := 2; r <= maxRow; r++ {
		get := func(col string) string {
			v, err := f.GetCellValue(sheet, fmt.Sprintf("%s%d", col, r))
			if err != nil {
				return ""
			}
			return sanitizeName(v)
		}
		row := AssetRow{
			Index:    r,
			Number:   get(cols.Number),
			Name:     get(cols.Name),
			Location: get(cols.Location),
		}
		if row.Name == "" && row.Location == "" {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Locations groups rows by location in first-seen order, de-duplicating
// plates that repeat with the same name and number.
func (t *AssetTable) Locations() []Location {
	index := make(map[string]int)
	var out []Location

	for _, row := range t.Rows {
		if row.Location == "" {
			continue
		}
		i, ok := index[row.Location]
		if !ok {
			i = len(out)
			index[row.Location] = i
			out = append(out, Location{Name: row.Location})
		}
		if row.Name == "" {
			continue
		}
		dup := false
		for _, p := range out[i].Plates {
			if p.Name == row.Name && p.Number == row.Number {
				dup = true
				break
			}
		}
		if !dup {
			out[i].Plates = append(out[i].Plates, Plate{Number: row.Number, Name: row.Name})
		}
	}
	return out
}

// DocxName returns the report file name for one asset row: "{number}- {name}.docx",
// with the row ordinal standing in for a missing number.
func (r AssetRow) DocxName() string {
	number := r.Number
	if number == "" {
		number = fmt.Sprintf("%d", r.Index-1)
	}
	return fmt.Sprintf("%s- %s.docx", number, r.Name)
}

// ImageName returns the rendered-sheet image file name for one asset row.
func (r AssetRow) ImageName() string {
	number := r.Number
	if number == "" {
		number = fmt.Sprintf("%d", r.Index-1)
	}
	return fmt.Sprintf("%s- %s.png", number, r.Name)
}

// SheetEntry links an asset row to its generated worksheet.
type SheetEntry struct {
	Row       AssetRow
	SheetName string
}

// SheetEntries matches asset rows to the workbook's generated sheets: an exact
// name match first, then the "name_N" suffix form produced when sheet names
// collide. Rows without a matching sheet keep an empty SheetName so callers
// can count them as skipped.
func (t *AssetTable) SheetEntries(f CalcFile) []SheetEntry {
	sheets := f.GetSheetList()
	find := func(base string) string {
		for _, s := range sheets {
			if s == base {
				return s
			}
		}
		for _, s := range sheets {
			if strings.HasPrefix(s, base+"_") {
				return s
			}
		}
		return ""
	}

	var entries []SheetEntry
	for _, row := range t.Rows {
		if row.Name == "" {
			continue
		}
		entries = append(entries, SheetEntry{Row: row, SheetName: find(row.Name)})
	}
	return entries
}
