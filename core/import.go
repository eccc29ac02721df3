package core

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"valugen/config"
)

// ImportSpec describes one pull of asset records into a data workbook.
// Columns lists the source fields in sheet column order; when empty, the
// fields of the first record are used in sorted order. FieldColumns pins
// source fields to fixed sheet column letters, e.g. the profile's asset
// columns; unpinned fields follow after the last pinned column.
type ImportSpec struct {
	Source       string
	Params       map[string]string
	Columns      []string
	FieldColumns map[string]string
}

// AssetFieldColumns pins the three asset identity fields of a source record
// to the profile's data-sheet columns, so an imported workbook drives folder
// and calc generation without reshaping.
func AssetFieldColumns(cols config.AssetColumns, numberField, nameField, locationField string) map[string]string {
	m := make(map[string]string)
	if numberField != "" {
		m[numberField] = cols.Number
	}
	if nameField != "" {
		m[nameField] = cols.Name
	}
	if locationField != "" {
		m[locationField] = cols.Location
	}
	return m
}

// ImportAssets fetches asset records and writes them into a fresh data
// workbook at outPath, header row first, ready to drive folder and calc
// generation. Returns the number of data rows written.
func ImportAssets(fetcher RowFetcher, spec ImportSpec, dataSheet, outPath string) (int, error) {
	records, err := fetcher.Fetch(spec.Source, spec.Params)
	if err != nil {
		return 0, fmt.Errorf("fetch assets from %s: %w", spec.Source, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("source %s returned no records", spec.Source)
	}

	fields := spec.Columns
	if len(fields) == 0 {
		for k := range records[0] {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}

	type placement struct {
		field string
		col   int
	}
	var placements []placement
	placed := make(map[string]bool)
	maxCol := 0
	for field, letter := range spec.FieldColumns {
		n, err := excelize.ColumnNameToNumber(letter)
		if err != nil {
			return 0, fmt.Errorf("field %s: invalid column %q: %w", field, letter, err)
		}
		placements = append(placements, placement{field: field, col: n})
		placed[field] = true
		if n > maxCol {
			maxCol = n
		}
	}
	for _, field := range fields {
		if placed[field] {
			continue
		}
		maxCol++
		placements = append(placements, placement{field: field, col: maxCol})
	}
	sort.Slice(placements, func(i, j int) bool { return placements[i].col < placements[j].col })

	f := excelize.NewFile()
	defer f.Close()
	defaultName := f.GetSheetName(0)
	if err := f.SetSheetName(defaultName, dataSheet); err != nil {
		return 0, fmt.Errorf("name data sheet: %w", err)
	}

	for _, p := range placements {
		addr, err := excelize.CoordinatesToCellName(p.col, 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(dataSheet, addr, p.field); err != nil {
			return 0, fmt.Errorf("write header %s: %w", p.field, err)
		}
	}

	for r, record := range records {
		for _, p := range placements {
			value, ok := record[p.field]
			if !ok || value == nil {
				continue
			}
			addr, err := excelize.CoordinatesToCellName(p.col, r+2)
			if err != nil {
				return 0, err
			}
			if err := f.SetCellValue(dataSheet, addr, value); err != nil {
				return 0, fmt.Errorf("write cell %s: %w", addr, err)
			}
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return 0, fmt.Errorf("save data workbook: %w", err)
	}
	return len(records), nil
}
