package core

import (
	"bytes"
	"image/png"
	"testing"

	"valugen/config"
)

func testRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	profile := config.DefaultProfile()
	rz, err := NewRasterizer(profile.Render, profile.Format.CurrencySuffix)
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}
	return rz
}

func TestRenderSheet_ProducesDecodablePng(t *testing.T) {
	f := newTestWorkbook(t)
	sheet := "Sheet1"
	if err := f.SetCellValue(sheet, "A1", "تقييم"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SetCellValue(sheet, "B2", 25220); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.MergeCell(sheet, "B4", "D4"); err != nil {
		t.Fatalf("MergeCell: %v", err)
	}

	rz := testRasterizer(t)
	resolver := NewResolver(f, defaultFormats(t), "data")
	img, err := rz.RenderSheet(resolver, sheet)
	if err != nil {
		t.Fatalf("RenderSheet: %v", err)
	}
	if len(img.PNG) == 0 {
		t.Fatal("empty png output")
	}

	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != img.Width || bounds.Dy() != img.Height {
		t.Errorf("decoded size = %dx%d, reported %dx%d",
			bounds.Dx(), bounds.Dy(), img.Width, img.Height)
	}
}

func TestRenderSheet_SupersamplingScalesCanvas(t *testing.T) {
	f := newTestWorkbook(t)
	if err := f.SetCellValue("Sheet1", "A1", "x"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}

	profile := config.DefaultProfile()
	resolver := NewResolver(f, defaultFormats(t), "data")

	oneX := profile.Render
	oneX.Scale = 1
	rzOne, err := NewRasterizer(oneX, profile.Format.CurrencySuffix)
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}
	imgOne, err := rzOne.RenderSheet(resolver, "Sheet1")
	if err != nil {
		t.Fatalf("RenderSheet at 1x: %v", err)
	}

	twoX := profile.Render
	twoX.Scale = 2
	rzTwo, err := NewRasterizer(twoX, profile.Format.CurrencySuffix)
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}
	imgTwo, err := rzTwo.RenderSheet(resolver, "Sheet1")
	if err != nil {
		t.Fatalf("RenderSheet at 2x: %v", err)
	}

	if imgTwo.Width != imgOne.Width*2 || imgTwo.Height != imgOne.Height*2 {
		t.Errorf("2x render = %dx%d, want double of %dx%d",
			imgTwo.Width, imgTwo.Height, imgOne.Width, imgOne.Height)
	}
}

func TestRenderSheet_LongTextGrowsRow(t *testing.T) {
	f := newTestWorkbook(t)
	short, err := testRasterizer(t).RenderSheet(NewResolver(f, defaultFormats(t), "data"), "Sheet1")
	if err != nil {
		t.Fatalf("RenderSheet: %v", err)
	}

	long := "a very long description that certainly does not fit in a single cell width and must wrap over multiple lines"
	if err := f.SetCellValue("Sheet1", "B3", long); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	grown, err := testRasterizer(t).RenderSheet(NewResolver(f, defaultFormats(t), "data"), "Sheet1")
	if err != nil {
		t.Fatalf("RenderSheet: %v", err)
	}
	if grown.Height <= short.Height {
		t.Errorf("height %d not grown beyond %d for wrapped text", grown.Height, short.Height)
	}
}

func TestRenderSheet_DefaultColumnWidth(t *testing.T) {
	f := newTestWorkbook(t)
	// Column A keeps the workbook default, which excelize reports as its own
	// 9.14-unit width; column B carries a stored width.
	if err := f.SetColWidth("Sheet1", "B", "B", 20); err != nil {
		t.Fatalf("SetColWidth: %v", err)
	}

	profile := config.DefaultProfile()
	opts := profile.Render
	opts.WindowCols = 2
	opts.WindowRows = 1
	opts.Scale = 1
	rz, err := NewRasterizer(opts, profile.Format.CurrencySuffix)
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}

	img, err := rz.RenderSheet(NewResolver(f, defaultFormats(t), "data"), "Sheet1")
	if err != nil {
		t.Fatalf("RenderSheet: %v", err)
	}
	// Unstored column: 12 units x 7 = 84px. Stored column: 20 x 7 = 140px.
	// Plus the 2px border allowance.
	if want := 2 + 84 + 140; img.Width != want {
		t.Errorf("width = %d, want %d", img.Width, want)
	}
}

func TestCurrencySuffixPattern(t *testing.T) {
	rz := testRasterizer(t)

	tests := []struct {
		text string
		want bool
	}{
		{text: "25,220 ر.س.", want: true},
		{text: "25,220 ر۔س۔", want: true},
		{text: "25,220", want: false},
		{text: "ر.س.", want: false}, // suffix without digits
		{text: "نص عادي", want: false},
	}
	for _, tt := range tests {
		if got := rz.isCurrencyText(tt.text); got != tt.want {
			t.Errorf("isCurrencyText(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	rz := testRasterizer(t)

	lines := rz.wrapText(rz.regular, 13, "one two three four five six seven eight nine ten", 60)
	if len(lines) < 2 {
		t.Errorf("lines = %d, want wrapping", len(lines))
	}
	for _, line := range lines {
		if w := rz.measure(rz.regular, 13, line); w > 60 && !bytes.Contains([]byte(line), []byte(" ")) {
			continue // a single oversized word is kept whole
		} else if w > 60 {
			t.Errorf("line %q measures %.1f, exceeds limit", line, w)
		}
	}

	single := rz.wrapText(rz.regular, 13, "short", 200)
	if len(single) != 1 || single[0] != "short" {
		t.Errorf("single line = %v", single)
	}
}

func TestParseARGB(t *testing.T) {
	tests := []struct {
		input  string
		wantOk bool
		r, g   uint8
	}{
		{input: "FFFFEB9C", wantOk: true, r: 0xff, g: 0xeb},
		{input: "C00000", wantOk: true, r: 0xc0, g: 0x00},
		{input: "bad", wantOk: false},
		{input: "", wantOk: false},
	}
	for _, tt := range tests {
		c, ok := parseARGB(tt.input)
		if ok != tt.wantOk {
			t.Errorf("parseARGB(%q) ok = %v, want %v", tt.input, ok, tt.wantOk)
			continue
		}
		if ok && (c.R != tt.r || c.G != tt.g) {
			t.Errorf("parseARGB(%q) = %+v", tt.input, c)
		}
	}
}
