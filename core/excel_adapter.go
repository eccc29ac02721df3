package core

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// CalcFile abstracts workbook operations to decouple the pipeline from excelize.
type CalcFile interface {
	Close() error
	SaveAs(name string) error

	GetSheetList() []string
	GetSheetIndex(name string) (int, error)
	NewSheet(name string) (int, error)
	CopySheet(from, to int) error
	DeleteSheet(name string) error

	GetCellValue(sheet, cell string) (string, error)
	GetCellRawValue(sheet, cell string) (string, error)
	GetCellFormula(sheet, cell string) (string, error)
	SetCellValue(sheet, cell string, value interface{}) error
	SetCellFormula(sheet, cell, formula string) error

	GetCellStyle(sheet, cell string) (int, error)
	SetCellStyle(sheet, hcell, vcell string, styleID int) error
	GetStyle(styleID int) (*excelize.Style, error)

	GetMergeCells(sheet string) ([]excelize.MergeCell, error)
	MergeCell(sheet, hcell, vcell string) error

	GetColWidth(sheet, col string) (float64, error)
	SetColWidth(sheet, startCol, endCol string, width float64) error
	GetRowHeight(sheet string, row int) (float64, error)
	SetRowHeight(sheet string, row int, height float64) error

	GetSheetView(sheet string, viewIndex int) (excelize.ViewOptions, error)
	SetSheetView(sheet string, viewIndex int, opts *excelize.ViewOptions) error

	GetRows(sheet string) ([][]string, error)
}

// ExcelizeCalcFile wraps an excelize.File behind the CalcFile interface.
type ExcelizeCalcFile struct {
	file *excelize.File
}

func OpenCalcFile(path string) (CalcFile, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &ExcelizeCalcFile{file: file}, nil
}

// WrapCalcFile wraps an in-memory excelize file; used by tests and by callers
// that build workbooks from scratch.
func WrapCalcFile(f *excelize.File) *ExcelizeCalcFile {
	return &ExcelizeCalcFile{file: f}
}

func (e *ExcelizeCalcFile) Close() error {
	return e.file.Close()
}

func (e *ExcelizeCalcFile) SaveAs(name string) error {
	return e.file.SaveAs(name)
}

func (e *ExcelizeCalcFile) GetSheetList() []string {
	return e.file.GetSheetList()
}

func (e *ExcelizeCalcFile) GetSheetIndex(name string) (int, error) {
	return e.file.GetSheetIndex(name)
}

func (e *ExcelizeCalcFile) NewSheet(name string) (int, error) {
	return e.file.NewSheet(name)
}

func (e *ExcelizeCalcFile) CopySheet(from, to int) error {
	return e.file.CopySheet(from, to)
}

func (e *ExcelizeCalcFile) DeleteSheet(name string) error {
	return e.file.DeleteSheet(name)
}

func (e *ExcelizeCalcFile) GetCellValue(sheet, cell string) (string, error) {
	return e.file.GetCellValue(sheet, cell)
}

func (e *ExcelizeCalcFile) GetCellRawValue(sheet, cell string) (string, error) {
	return e.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
}

func (e *ExcelizeCalcFile) GetCellFormula(sheet, cell string) (string, error) {
	return e.file.GetCellFormula(sheet, cell)
}

func (e *ExcelizeCalcFile) SetCellValue(sheet, cell string, value interface{}) error {
	return e.file.SetCellValue(sheet, cell, value)
}

func (e *ExcelizeCalcFile) SetCellFormula(sheet, cell, formula string) error {
	return e.file.SetCellFormula(sheet, cell, formula)
}

func (e *ExcelizeCalcFile) GetCellStyle(sheet, cell string) (int, error) {
	return e.file.GetCellStyle(sheet, cell)
}

func (e *ExcelizeCalcFile) SetCellStyle(sheet, hcell, vcell string, styleID int) error {
	return e.file.SetCellStyle(sheet, hcell, vcell, styleID)
}

func (e *ExcelizeCalcFile) GetStyle(styleID int) (*excelize.Style, error) {
	return e.file.GetStyle(styleID)
}

func (e *ExcelizeCalcFile) GetMergeCells(sheet string) ([]excelize.MergeCell, error) {
	return e.file.GetMergeCells(sheet)
}

func (e *ExcelizeCalcFile) MergeCell(sheet, hcell, vcell string) error {
	return e.file.MergeCell(sheet, hcell, vcell)
}

func (e *ExcelizeCalcFile) GetColWidth(sheet, col string) (float64, error) {
	return e.file.GetColWidth(sheet, col)
}

func (e *ExcelizeCalcFile) SetColWidth(sheet, startCol, endCol string, width float64) error {
	return e.file.SetColWidth(sheet, startCol, endCol, width)
}

func (e *ExcelizeCalcFile) GetRowHeight(sheet string, row int) (float64, error) {
	return e.file.GetRowHeight(sheet, row)
}

func (e *ExcelizeCalcFile) SetRowHeight(sheet string, row int, height float64) error {
	return e.file.SetRowHeight(sheet, row, height)
}

func (e *ExcelizeCalcFile) GetSheetView(sheet string, viewIndex int) (excelize.ViewOptions, error) {
	return e.file.GetSheetView(sheet, viewIndex)
}

func (e *ExcelizeCalcFile) SetSheetView(sheet string, viewIndex int, opts *excelize.ViewOptions) error {
	return e.file.SetSheetView(sheet, viewIndex, opts)
}

func (e *ExcelizeCalcFile) GetRows(sheet string) ([][]string, error) {
	return e.file.GetRows(sheet)
}

// findSheet resolves a sheet name against the workbook: exact match first, then
// a case-insensitive match, then empty. Cross-sheet formula targets use this so
// that lightly renamed sheets still resolve.
func findSheet(f CalcFile, name string) string {
	if name == "" {
		return ""
	}
	if idx, err := f.GetSheetIndex(name); err == nil && idx >= 0 {
		return name
	}
	lower := strings.ToLower(name)
	for _, s := range f.GetSheetList() {
		if strings.ToLower(s) == lower {
			return s
		}
	}
	return ""
}

// isRightToLeft reports whether a sheet's first view is flagged right-to-left.
func isRightToLeft(f CalcFile, sheet string) bool {
	view, err := f.GetSheetView(sheet, 0)
	if err != nil || view.RightToLeft == nil {
		return false
	}
	return *view.RightToLeft
}

// cellDate reports the cell's value as a date when its style carries a date
// number format. Excel stores dates as serial numbers; the raw value plus the
// format id is the only reliable signal.
func cellDate(f CalcFile, sheet, cell string) (time.Time, bool) {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return time.Time{}, false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return time.Time{}, false
	}
	if !isDateNumFmt(style) {
		return time.Time{}, false
	}
	raw, err := f.GetCellRawValue(sheet, cell)
	if err != nil || raw == "" {
		return time.Time{}, false
	}
	serial, err := parseFloat(raw)
	if err != nil {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Built-in date format ids per ECMA-376 (14-22 dates/times, 45-47 durations).
func isDateNumFmt(style *excelize.Style) bool {
	if style.NumFmt >= 14 && style.NumFmt <= 22 {
		return true
	}
	if style.NumFmt >= 45 && style.NumFmt <= 47 {
		return true
	}
	if style.CustomNumFmt != nil {
		fmtStr := strings.ToLower(*style.CustomNumFmt)
		fmtStr = strings.ReplaceAll(fmtStr, "\\", "")
		return strings.ContainsAny(fmtStr, "y") ||
			(strings.Contains(fmtStr, "d") && strings.Contains(fmtStr, "m"))
	}
	return false
}
