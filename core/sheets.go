package core

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"valugen/config"
)

// SheetBuilder prepares a calc workbook from a template and a data workbook:
// mirror the data sheet in, clone the template once per asset, and wire each
// clone's cells to the asset's data row.
type SheetBuilder struct {
	profile *config.TemplateProfile
}

func NewSheetBuilder(profile *config.TemplateProfile) *SheetBuilder {
	return &SheetBuilder{profile: profile}
}

// MirrorDataSheet copies the data workbook's data sheet into the calc workbook,
// replacing any previous copy, and forces both it and the template sheet into
// right-to-left view.
func (b *SheetBuilder) MirrorDataSheet(calc, data CalcFile) error {
	sourceName := findSheet(data, b.profile.DataSheet)
	if sourceName == "" {
		if list := data.GetSheetList(); len(list) > 0 {
			sourceName = list[0]
		}
	}
	if sourceName == "" {
		return fmt.Errorf("data workbook has no %s sheet", b.profile.DataSheet)
	}

	targetName := findSheet(calc, b.profile.DataSheet)
	if targetName != "" {
		if err := calc.DeleteSheet(targetName); err != nil {
			return fmt.Errorf("clear data sheet: %w", err)
		}
	}
	if _, err := calc.NewSheet(b.profile.DataSheet); err != nil {
		return fmt.Errorf("create data sheet: %w", err)
	}

	maxRow, maxCol := SheetBounds(data, sourceName)
	for r := 1; r <= maxRow; r++ {
		for c := 1; c <= maxCol; c++ {
			addr, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return err
			}
			value, err := data.GetCellValue(sourceName, addr)
			if err != nil {
				continue
			}
			if value == "" {
				continue
			}
			if err := calc.SetCellValue(b.profile.DataSheet, addr, value); err != nil {
				return fmt.Errorf("mirror cell %s: %w", addr, err)
			}
		}
	}

	templateName := b.templateSheet(calc)
	forceRightToLeft(calc, b.profile.DataSheet)
	if templateName != "" {
		forceRightToLeft(calc, templateName)
	}
	return nil
}

// BuildAssetSheets clones the template sheet once per asset row of the data
// workbook, names each clone after the asset, and points its input cells at
// the asset's row of the mirrored data sheet. Previously generated sheets are
// dropped first so the operation can be re-run.
func (b *SheetBuilder) BuildAssetSheets(calc, data CalcFile) (int, error) {
	dataName := findSheet(data, b.profile.DataSheet)
	if dataName == "" {
		if list := data.GetSheetList(); len(list) > 0 {
			dataName = list[0]
		}
	}
	if dataName == "" {
		return 0, fmt.Errorf("data workbook has no %s sheet", b.profile.DataSheet)
	}
	templateName := b.templateSheet(calc)
	if templateName == "" {
		return 0, fmt.Errorf("calc workbook has no %s sheet", b.profile.TemplateSheet)
	}
	forceRightToLeft(calc, templateName)
	if calcData := findSheet(calc, b.profile.DataSheet); calcData != "" {
		forceRightToLeft(calc, calcData)
	}

	// Drop older generated sheets, keep the template and mirrored data.
	keep := map[string]bool{
		normalizeKey(templateName):        true,
		normalizeKey(b.profile.DataSheet): true,
	}
	for _, name := range calc.GetSheetList() {
		if keep[normalizeKey(name)] {
			continue
		}
		if err := calc.DeleteSheet(name); err != nil {
			slog.Warn("failed to drop generated sheet", "sheet", name, "error", err)
		}
	}

	table, err := ReadAssetTable(data, dataName, b.profile.Columns)
	if err != nil {
		return 0, err
	}

	templateIdx, err := calc.GetSheetIndex(templateName)
	if err != nil {
		return 0, fmt.Errorf("template sheet index: %w", err)
	}

	used := make(map[string]bool)
	for _, name := range calc.GetSheetList() {
		used[name] = true
	}

	created := 0
	for _, asset := range table.Rows {
		if asset.Name == "" {
			continue
		}
		sheetName := uniqueSheetName(used, asset.Name, asset.Index)
		idx, err := calc.NewSheet(sheetName)
		if err != nil {
			return created, fmt.Errorf("create sheet %s: %w", sheetName, err)
		}
		if err := calc.CopySheet(templateIdx, idx); err != nil {
			return created, fmt.Errorf("clone template into %s: %w", sheetName, err)
		}
		b.copyLayout(calc, templateName, sheetName)
		if err := b.wireDataRefs(calc, sheetName, asset.Index); err != nil {
			return created, err
		}
		forceRightToLeft(calc, sheetName)
		created++
	}

	for _, name := range calc.GetSheetList() {
		forceRightToLeft(calc, name)
	}
	return created, nil
}

// copyLayout carries the template's column widths and row heights onto a
// clone; cell contents and styles arrive via the sheet copy.
func (b *SheetBuilder) copyLayout(calc CalcFile, from, to string) {
	maxRow, maxCol := SheetBounds(calc, from)
	for c := 1; c <= maxCol; c++ {
		name, err := excelize.ColumnNumberToName(c)
		if err != nil {
			continue
		}
		w, err := calc.GetColWidth(from, name)
		if err != nil || w <= 0 {
			continue
		}
		if err := calc.SetColWidth(to, name, name, w); err != nil {
			slog.Debug("failed to copy column width", "sheet", to, "column", name, "error", err)
		}
	}
	for r := 1; r <= maxRow; r++ {
		h, err := calc.GetRowHeight(from, r)
		if err != nil || h <= 0 {
			continue
		}
		if err := calc.SetRowHeight(to, r, h); err != nil {
			slog.Debug("failed to copy row height", "sheet", to, "row", r, "error", err)
		}
	}
}

// wireDataRefs points a clone's input cells at one row of the data sheet and
// writes the profile's inline formulas.
func (b *SheetBuilder) wireDataRefs(calc CalcFile, sheet string, dataRow int) error {
	for _, ref := range b.profile.DataRefs {
		formula := fmt.Sprintf("%s!%s%d", b.profile.DataSheet, ref.Column, dataRow)
		if err := calc.SetCellFormula(sheet, ref.Cell, formula); err != nil {
			return fmt.Errorf("set data ref %s on %s: %w", ref.Cell, sheet, err)
		}
	}
	for _, inline := range b.profile.InlineFormulas {
		if err := calc.SetCellFormula(sheet, inline.Cell, inline.Formula); err != nil {
			return fmt.Errorf("set formula %s on %s: %w", inline.Cell, sheet, err)
		}
	}
	return nil
}

func (b *SheetBuilder) templateSheet(calc CalcFile) string {
	name := findSheet(calc, b.profile.TemplateSheet)
	if name == "" {
		if list := calc.GetSheetList(); len(list) > 0 {
			name = list[0]
		}
	}
	return name
}

// forceRightToLeft flips a sheet's first view to right-to-left while keeping
// its other view settings.
func forceRightToLeft(f CalcFile, sheet string) {
	view, err := f.GetSheetView(sheet, 0)
	if err != nil {
		view = excelize.ViewOptions{}
	}
	rtl := true
	view.RightToLeft = &rtl
	if view.ShowGridLines == nil {
		show := true
		view.ShowGridLines = &show
	}
	if view.ShowRowColHeaders == nil {
		show := true
		view.ShowRowColHeaders = &show
	}
	if err := f.SetSheetView(sheet, 0, &view); err != nil {
		slog.Warn("failed to force right-to-left view", "sheet", sheet, "error", err)
	}
}
