package core

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"valugen/config"
)

func newTestWorkbook(t *testing.T) *ExcelizeCalcFile {
	t.Helper()
	f := WrapCalcFile(excelize.NewFile())
	t.Cleanup(func() { f.Close() })
	return f
}

func emptyFormats(t *testing.T) *FormatTable {
	t.Helper()
	formats, err := NewFormatTable(config.FormatRules{})
	if err != nil {
		t.Fatalf("NewFormatTable: %v", err)
	}
	return formats
}

func TestResolver_SingleReferencePassthrough(t *testing.T) {
	f := newTestWorkbook(t)
	sheet := "Sheet1"
	if err := f.SetCellValue(sheet, "A2", 42); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellFormula(sheet, "B2", "=A2"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	got := r.Resolve(sheet, "B2", NewResolutionCache())
	if got != "42" {
		t.Errorf("Resolve(B2) = %q, want %q", got, "42")
	}
}

func TestResolver_CycleResolvesEmpty(t *testing.T) {
	f := newTestWorkbook(t)
	sheet := "Sheet1"
	if err := f.SetCellFormula(sheet, "A1", "=B1"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}
	if err := f.SetCellFormula(sheet, "B1", "=A1"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	if got := r.Resolve(sheet, "A1", NewResolutionCache()); got != "" {
		t.Errorf("Resolve(A1) = %q, want empty for a circular chain", got)
	}
}

func TestResolver_Arithmetic(t *testing.T) {
	f := newTestWorkbook(t)
	sheet := "Sheet1"
	if err := f.SetCellValue(sheet, "K6", 0.5); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellValue(sheet, "I6", 0.25); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellValue(sheet, "G6", 0.125); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellFormula(sheet, "L6", "=K6+I6+G6"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}
	if err := f.SetCellValue(sheet, "E6", 1000); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellFormula(sheet, "M6", "=E6+(E6*L6)"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	cache := NewResolutionCache()
	if got := r.Resolve(sheet, "L6", cache); got != "0.875" {
		t.Errorf("Resolve(L6) = %q, want %q", got, "0.875")
	}
	if got := r.Resolve(sheet, "M6", cache); got != "1875" {
		t.Errorf("Resolve(M6) = %q, want %q", got, "1875")
	}
}

func TestResolver_CrossSheetReference(t *testing.T) {
	f := newTestWorkbook(t)
	if _, err := f.NewSheet("data"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if err := f.SetCellValue("data", "B4", "مرسيدس أكتروس"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellFormula("Sheet1", "C3", "=data!B4"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	got := r.Resolve("Sheet1", "C3", NewResolutionCache())
	if got != "مرسيدس أكتروس" {
		t.Errorf("Resolve(C3) = %q, want the data cell text", got)
	}
}

func TestResolver_MissingSheetFallsBackToCurrent(t *testing.T) {
	f := newTestWorkbook(t)
	if err := f.SetCellValue("Sheet1", "B4", 7); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellFormula("Sheet1", "C3", "=nosuch!B4"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	if got := r.Resolve("Sheet1", "C3", NewResolutionCache()); got != "7" {
		t.Errorf("Resolve(C3) = %q, want fallback to current sheet", got)
	}
}

func TestResolver_SafetyFilterRejectsFunctions(t *testing.T) {
	f := newTestWorkbook(t)
	if err := f.SetCellFormula("Sheet1", "A1", "=SUM(B1:B3)"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	if got := r.Resolve("Sheet1", "A1", NewResolutionCache()); got != "" {
		t.Errorf("Resolve(A1) = %q, want empty for an unsupported formula", got)
	}
}

func TestResolver_NonNumericReferenceBecomesZero(t *testing.T) {
	f := newTestWorkbook(t)
	if err := f.SetCellValue("Sheet1", "A1", "text"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellFormula("Sheet1", "B1", "=A1+5"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	if got := r.Resolve("Sheet1", "B1", NewResolutionCache()); got != "5" {
		t.Errorf("Resolve(B1) = %q, want %q", got, "5")
	}
}

func TestResolver_CellDisplayDirectDataRef(t *testing.T) {
	f := newTestWorkbook(t)
	if _, err := f.NewSheet("data"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if err := f.SetCellValue("data", "N3", 25220); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellFormula("Sheet1", "K3", "=data!N3"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	formats := defaultFormats(t)
	r := NewResolver(f, formats, "data")
	got := r.CellDisplay("Sheet1", "K3", NewResolutionCache())
	if got != "25,220 ر.س." {
		t.Errorf("CellDisplay(K3) = %q, want formatted currency", got)
	}
}

func TestResolver_CellDisplayLiteral(t *testing.T) {
	f := newTestWorkbook(t)
	if err := f.SetCellValue("Sheet1", "B10", "  padded  "); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	if got := r.CellDisplay("Sheet1", "B10", NewResolutionCache()); got != "padded" {
		t.Errorf("CellDisplay(B10) = %q, want trimmed literal", got)
	}
}

func TestResolver_CacheReuse(t *testing.T) {
	f := newTestWorkbook(t)
	if err := f.SetCellValue("Sheet1", "A1", 3); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellFormula("Sheet1", "B1", "=A1*2"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	r := NewResolver(f, emptyFormats(t), "data")
	cache := NewResolutionCache()
	first := r.Resolve("Sheet1", "B1", cache)
	// Mutating the source after the first resolution must not change the
	// cached result within the same pass.
	if err := f.SetCellValue("Sheet1", "A1", 100); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	second := r.Resolve("Sheet1", "B1", cache)
	if first != "6" || second != "6" {
		t.Errorf("Resolve(B1) = %q then %q, want cached %q", first, second, "6")
	}
}
