package core

import (
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// TestExcelizeCalcFile_BasicOperations exercises the thin excelize wrapper:
// delegation must be wired correctly and satisfy the CalcFile contract.
func TestExcelizeCalcFile_BasicOperations(t *testing.T) {
	adapter := newTestWorkbook(t)
	sheet := "Sheet1"

	if err := adapter.SetCellValue(sheet, "A1", "Hello"); err != nil {
		t.Errorf("SetCellValue failed: %v", err)
	}
	got, err := adapter.GetCellValue(sheet, "A1")
	if err != nil || got != "Hello" {
		t.Errorf("GetCellValue = %q (%v), want Hello", got, err)
	}

	if err := adapter.SetCellFormula(sheet, "B1", "=A1"); err != nil {
		t.Errorf("SetCellFormula failed: %v", err)
	}
	formula, err := adapter.GetCellFormula(sheet, "B1")
	if err != nil || formula == "" {
		t.Errorf("GetCellFormula = %q (%v), want non-empty", formula, err)
	}

	if _, err := adapter.NewSheet("extra"); err != nil {
		t.Errorf("NewSheet failed: %v", err)
	}
	idx, err := adapter.GetSheetIndex("extra")
	if err != nil || idx == -1 {
		t.Errorf("GetSheetIndex(extra) = %d (%v)", idx, err)
	}
	if err := adapter.DeleteSheet("extra"); err != nil {
		t.Errorf("DeleteSheet failed: %v", err)
	}

	if err := adapter.SetColWidth(sheet, "A", "A", 25); err != nil {
		t.Errorf("SetColWidth failed: %v", err)
	}
	w, err := adapter.GetColWidth(sheet, "A")
	if err != nil || w != 25 {
		t.Errorf("GetColWidth = %v (%v), want 25", w, err)
	}

	if err := adapter.SetRowHeight(sheet, 3, 30); err != nil {
		t.Errorf("SetRowHeight failed: %v", err)
	}
	h, err := adapter.GetRowHeight(sheet, 3)
	if err != nil || h != 30 {
		t.Errorf("GetRowHeight = %v (%v), want 30", h, err)
	}

	if err := adapter.MergeCell(sheet, "C1", "D2"); err != nil {
		t.Errorf("MergeCell failed: %v", err)
	}
	merges, err := adapter.GetMergeCells(sheet)
	if err != nil || len(merges) != 1 {
		t.Errorf("GetMergeCells = %d merges (%v), want 1", len(merges), err)
	}
}

func TestFindSheet(t *testing.T) {
	f := newTestWorkbook(t)
	if _, err := f.NewSheet("Data"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}

	if got := findSheet(f, "Data"); got != "Data" {
		t.Errorf("exact match = %q", got)
	}
	if got := findSheet(f, "data"); got != "Data" {
		t.Errorf("case-insensitive match = %q, want Data", got)
	}
	if got := findSheet(f, "nope"); got != "" {
		t.Errorf("missing sheet = %q, want empty", got)
	}
	if got := findSheet(f, ""); got != "" {
		t.Errorf("empty name = %q, want empty", got)
	}
}

func TestIsRightToLeft(t *testing.T) {
	f := newTestWorkbook(t)
	sheet := "Sheet1"

	if isRightToLeft(f, sheet) {
		t.Error("fresh sheet should not be right-to-left")
	}
	forceRightToLeft(f, sheet)
	if !isRightToLeft(f, sheet) {
		t.Error("sheet should be right-to-left after forcing")
	}
}

func TestCellDate(t *testing.T) {
	f := newTestWorkbook(t)
	sheet := "Sheet1"

	when := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	if err := f.SetCellValue(sheet, "A1", when); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	styleID, err := f.file.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", styleID); err != nil {
		t.Fatalf("SetCellStyle: %v", err)
	}

	got, ok := cellDate(f, sheet, "A1")
	if !ok {
		t.Fatal("date-styled cell not detected as a date")
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 7 {
		t.Errorf("date = %v", got)
	}

	// A plain number with no date style is not a date.
	if err := f.SetCellValue(sheet, "B1", 45000); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if _, ok := cellDate(f, sheet, "B1"); ok {
		t.Error("plain numeric cell misread as a date")
	}
}
