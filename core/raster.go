package core

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"valugen/config"
)

const (
	defaultColUnits  = 12.0
	defaultRowUnits  = 18.0
	colUnitToPx      = 7.0
	rowUnitToPx      = 1.2
	minColPx, maxColPx = 40.0, 160.0
	minRowPx, maxRowPx = 18.0, 80.0
	lineHeightFactor = 1.3

	// excelize reports its own sheet defaults for unstored column widths and
	// row heights instead of an error; those read as unstored here so the
	// template defaults above apply.
	excelizeDefaultColWidth  = 9.140625
	excelizeDefaultRowHeight = 15.0

	// Arabic full stop; used inside rendered currency suffixes so the text
	// engine cannot reorder Latin periods to the front of the suffix.
	arabicFullStop = "۔"
)

var arabicTextPattern = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)

// RenderedImage is one rasterized sheet window.
type RenderedImage struct {
	PNG    []byte
	Width  int // pixels, after supersampling
	Height int
}

// Rasterizer paints a sheet's render window into a bitmap laid out like the
// spreadsheet: merges, fills, borders, wrapped and aligned text.
type Rasterizer struct {
	opts config.RenderOptions

	regular *truetype.Font
	bold    *truetype.Font

	suffixLatin     string
	suffixRendered  string // suffix with Arabic full stops
	currencyMatch   *regexp.Regexp
	currencyStrip   *regexp.Regexp
	containsDigitRe *regexp.Regexp
}

// NewRasterizer loads fonts (profile paths, or the built-in Go fonts) and
// compiles the currency-suffix matchers.
func NewRasterizer(opts config.RenderOptions, currencySuffix string) (*Rasterizer, error) {
	regular, err := loadFont(opts.RegularFontPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("regular font: %w", err)
	}
	bold, err := loadFont(opts.BoldFontPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("bold font: %w", err)
	}

	rz := &Rasterizer{
		opts:            opts,
		regular:         regular,
		bold:            bold,
		suffixLatin:     currencySuffix,
		suffixRendered:  strings.ReplaceAll(currencySuffix, ".", arabicFullStop),
		containsDigitRe: regexp.MustCompile(`[0-9]`),
	}
	if currencySuffix != "" {
		body := currencySuffixPattern(currencySuffix)
		rz.currencyMatch = regexp.MustCompile(body)
		rz.currencyStrip = regexp.MustCompile(`\s*` + body + `\s*`)
	}
	return rz, nil
}

// currencySuffixPattern builds a matcher accepting either period glyph and
// optional spacing inside the configured suffix.
func currencySuffixPattern(suffix string) string {
	var b strings.Builder
	for _, r := range suffix {
		if r == '.' {
			b.WriteString(`[.` + arabicFullStop + `]\s*`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return strings.TrimSuffix(b.String(), `\s*`)
}

func loadFont(path string, fallback []byte) (*truetype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return truetype.Parse(data)
}

func (rz *Rasterizer) measure(fnt *truetype.Font, size float64, s string) float64 {
	if s == "" {
		return 0
	}
	face := truetype.NewFace(fnt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()
	d := font.Drawer{Face: face}
	return float64(d.MeasureString(s)) / 64
}

func clampPx(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// RenderSheet rasterizes the profile's render window of one sheet. Cell values
// come from the resolver with a cache scoped to this render pass.
func (rz *Rasterizer) RenderSheet(res *Resolver, sheet string) (*RenderedImage, error) {
	f := res.File
	rows, cols := rz.opts.WindowRows, rz.opts.WindowCols
	pad := float64(rz.opts.Padding)
	scale := rz.opts.Scale
	rtl := isRightToLeft(f, sheet)
	spans := MergeMap(f, sheet, rows, cols, rtl)
	cache := NewResolutionCache()

	colWidths := make([]float64, cols)
	for c := 1; c <= cols; c++ {
		name, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return nil, err
		}
		w, err := f.GetColWidth(sheet, name)
		if err != nil || w <= 0 || w == excelizeDefaultColWidth {
			w = defaultColUnits
		}
		colWidths[c-1] = clampPx(w*colUnitToPx, minColPx, maxColPx)
	}
	rowHeights := make([]float64, rows)
	for r := 1; r <= rows; r++ {
		h, err := f.GetRowHeight(sheet, r)
		if err != nil || h <= 0 || h == excelizeDefaultRowHeight {
			h = defaultRowUnits
		}
		rowHeights[r-1] = clampPx(h*rowUnitToPx, minRowPx, maxRowPx)
	}

	// Grow row heights so wrapped text is never cut off; measurement uses the
	// same fonts and widths the paint pass will use.
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			if coveredByMerge(spans, r, c) {
				continue
			}
			span, merged := spans[mergeKey{row: r, col: c}]
			contentCol, contentRow := c, r
			avail := colWidths[c-1]
			if merged {
				contentCol, contentRow = span.Left, span.Top
				avail = 0
				for cc := span.Left; cc <= span.Right && cc <= cols; cc++ {
					avail += colWidths[cc-1]
				}
			}
			addr, err := excelize.CoordinatesToCellName(contentCol, contentRow)
			if err != nil {
				continue
			}
			text := res.CellDisplay(sheet, addr, cache)
			if text == "" {
				continue
			}
			fnt, size := rz.cellFont(f, sheet, addr, r)
			maxTextWidth := math.Max(20, avail-pad*2)
			textWidth := rz.textWidth(fnt, size, text)
			lines := math.Max(1, math.Ceil(textWidth/maxTextWidth))
			needed := lines*size*lineHeightFactor + pad*2
			if needed > rowHeights[r-1] {
				rowHeights[r-1] = needed
			}
		}
	}

	totalWidth := 2.0
	xOffsets := make([]float64, cols) // natural left-to-right pixel slots
	for c := 0; c < cols; c++ {
		xOffsets[c] = totalWidth - 1
		totalWidth += colWidths[c]
	}
	totalHeight := 2.0
	yOffsets := make([]float64, rows)
	for r := 0; r < rows; r++ {
		yOffsets[r] = totalHeight - 1
		totalHeight += rowHeights[r]
	}

	devW := int(math.Round(totalWidth)) * scale
	devH := int(math.Round(totalHeight)) * scale
	img := image.NewRGBA(image.Rect(0, 0, devW, devH))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	ft := freetype.NewContext()
	ft.SetDPI(72)
	ft.SetClip(img.Bounds())
	ft.SetDst(img)

	// Column iteration order follows the sheet direction; pixel slots do not.
	colOrder := make([]int, cols)
	for i := range colOrder {
		if rtl {
			colOrder[i] = cols - i
		} else {
			colOrder[i] = i + 1
		}
	}

	borderColor := color.NRGBA{R: 0xb8, G: 0xb8, B: 0xb8, A: 0xff}

	for r := 1; r <= rows; r++ {
		for _, c := range colOrder {
			if coveredByMerge(spans, r, c) {
				continue
			}
			span, merged := spans[mergeKey{row: r, col: c}]
			left, right, bottom := c, c, r
			if merged {
				left, right, bottom = span.Left, span.Right, span.Bottom
			}
			if right > cols {
				right = cols
			}
			if bottom > rows {
				bottom = rows
			}

			x := xOffsets[left-1]
			y := yOffsets[r-1]
			cellW := 0.0
			for cc := left; cc <= right; cc++ {
				cellW += colWidths[cc-1]
			}
			cellH := 0.0
			for rr := r; rr <= bottom; rr++ {
				cellH += rowHeights[rr-1]
			}

			contentCol, contentRow := c, r
			if merged {
				contentCol, contentRow = span.Left, span.Top
			}
			addr, err := excelize.CoordinatesToCellName(contentCol, contentRow)
			if err != nil {
				continue
			}

			style := rz.cellStyle(f, sheet, addr)
			if fill, ok := styleFillColor(style); ok {
				fillRect(img, x, y, cellW, cellH, scale, fill)
			}
			strokeRect(img, x, y, cellW, cellH, scale, borderColor)

			text := res.CellDisplay(sheet, addr, cache)
			if text == "" {
				continue
			}
			rz.paintCellText(ft, f, sheet, addr, text, r, rtl, x, y, cellW, cellH, pad, scale, style)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode sheet image: %w", err)
	}
	return &RenderedImage{PNG: buf.Bytes(), Width: devW, Height: devH}, nil
}

// textWidth measures display text, treating currency text as its two painted
// runs (number, space, suffix with Arabic stops).
func (rz *Rasterizer) textWidth(fnt *truetype.Font, size float64, text string) float64 {
	if !rz.isCurrencyText(text) {
		return rz.measure(fnt, size, text)
	}
	number := strings.TrimSpace(rz.currencyStrip.ReplaceAllString(text, ""))
	return rz.measure(fnt, size, number) +
		rz.measure(fnt, size, " ") +
		rz.measure(fnt, size, rz.suffixRendered)
}

func (rz *Rasterizer) isCurrencyText(text string) bool {
	return rz.currencyMatch != nil &&
		rz.currencyMatch.MatchString(text) &&
		rz.containsDigitRe.MatchString(text)
}

func (rz *Rasterizer) cellStyle(f CalcFile, sheet, addr string) *excelize.Style {
	styleID, err := f.GetCellStyle(sheet, addr)
	if err != nil {
		return nil
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return nil
	}
	return style
}

// cellFont picks the font and size for a cell: bold rows and explicitly bold
// cells use the bold face at header size.
func (rz *Rasterizer) cellFont(f CalcFile, sheet, addr string, row int) (*truetype.Font, float64) {
	bold := rz.isBoldRow(row)
	if !bold {
		if style := rz.cellStyle(f, sheet, addr); style != nil && style.Font != nil {
			bold = style.Font.Bold
		}
	}
	if bold {
		return rz.bold, rz.opts.HeaderFontSize
	}
	return rz.regular, rz.opts.BaseFontSize
}

func (rz *Rasterizer) isBoldRow(row int) bool {
	for _, r := range rz.opts.BoldRows {
		if r == row {
			return true
		}
	}
	return false
}

func (rz *Rasterizer) paintCellText(ft *freetype.Context, f CalcFile, sheet, addr, text string,
	row int, rtl bool, x, y, cellW, cellH, pad float64, scale int, style *excelize.Style) {

	fnt, size := rz.cellFont(f, sheet, addr, row)
	lineHeight := size * lineHeightFactor
	maxTextWidth := math.Max(20, cellW-pad*2)

	align := ""
	if style != nil && style.Alignment != nil {
		align = style.Alignment.Horizontal
	}
	if align == "" {
		if arabicTextPattern.MatchString(text) || rtl {
			align = "right"
		} else {
			align = "center"
		}
	}
	if align != "left" && align != "right" {
		align = "center"
	}

	textColor := color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	if style != nil && style.Font != nil && style.Font.Color != "" {
		if c, ok := parseARGB(style.Font.Color); ok {
			textColor = c
		}
	}

	isCurrency := rz.isCurrencyText(text)
	if isCurrency && align != "left" {
		// Two right-anchored runs keep the visual order "25,220 ر.س." stable:
		// the number first, the suffix (Arabic full stops) to its left.
		number := strings.TrimSpace(rz.currencyStrip.ReplaceAllString(text, ""))
		numW := rz.measure(fnt, size, number)
		spaceW := rz.measure(fnt, size, " ")
		curW := rz.measure(fnt, size, rz.suffixRendered)
		totalW := numW + spaceW + curW

		anchorRight := x + cellW - pad
		if align == "center" {
			anchorRight = x + cellW/2 + totalW/2
		}
		baseline := y + (cellH-lineHeight)/2 + size

		rz.drawString(ft, fnt, size, scale, textColor, number, anchorRight-numW, baseline)
		rz.drawString(ft, fnt, size, scale, textColor, rz.suffixRendered,
			anchorRight-numW-spaceW-curW, baseline)
		return
	}

	normalized := text
	if isCurrency {
		normalized = strings.ReplaceAll(text, rz.suffixLatin, rz.suffixRendered)
	}
	lines := rz.wrapText(fnt, size, normalized, maxTextWidth)
	blockHeight := float64(len(lines)) * lineHeight
	startY := y + (cellH-blockHeight)/2 + size
	for i, line := range lines {
		lineW := rz.measure(fnt, size, line)
		var lx float64
		switch align {
		case "left":
			lx = x + pad
		case "right":
			lx = x + cellW - pad - lineW
		default:
			lx = x + cellW/2 - lineW/2
		}
		rz.drawString(ft, fnt, size, scale, textColor, line, lx, startY+float64(i)*lineHeight)
	}
}

// wrapText greedily packs whitespace-separated words into lines that fit.
func (rz *Rasterizer) wrapText(fnt *truetype.Font, size float64, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	var lines []string
	var line string
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if rz.measure(fnt, size, candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, text)
	}
	return lines
}

func (rz *Rasterizer) drawString(ft *freetype.Context, fnt *truetype.Font, size float64,
	scale int, col color.NRGBA, s string, x, y float64) {

	ft.SetFont(fnt)
	ft.SetFontSize(size * float64(scale))
	ft.SetSrc(image.NewUniform(col))
	pt := freetype.Pt(int(math.Round(x*float64(scale))), int(math.Round(y*float64(scale))))
	_, _ = ft.DrawString(s, pt)
}

func fillRect(img *image.RGBA, x, y, w, h float64, scale int, col color.NRGBA) {
	s := float64(scale)
	r := image.Rect(
		int(math.Round(x*s)), int(math.Round(y*s)),
		int(math.Round((x+w)*s)), int(math.Round((y+h)*s)))
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func strokeRect(img *image.RGBA, x, y, w, h float64, scale int, col color.NRGBA) {
	s := float64(scale)
	x0, y0 := int(math.Round(x*s)), int(math.Round(y*s))
	x1, y1 := int(math.Round((x+w)*s)), int(math.Round((y+h)*s))
	t := scale // 1 logical px
	u := image.NewUniform(col)
	draw.Draw(img, image.Rect(x0, y0, x1, y0+t), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(x0, y1-t, x1, y1), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(x0, y0, x0+t, y1), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(x1-t, y0, x1, y1), u, image.Point{}, draw.Over)
}

// styleFillColor extracts a pattern fill's foreground color.
func styleFillColor(style *excelize.Style) (color.NRGBA, bool) {
	if style == nil || len(style.Fill.Color) == 0 || style.Fill.Type == "" {
		return color.NRGBA{}, false
	}
	return parseARGB(style.Fill.Color[0])
}

// parseARGB converts an alpha-prefixed (or plain) hex color to NRGBA. Six-digit
// values are treated as opaque, matching how the source styles store colors.
func parseARGB(hex string) (color.NRGBA, bool) {
	hex = strings.TrimPrefix(strings.TrimPrefix(hex, "#"), "0x")
	if len(hex) == 6 {
		hex = "FF" + hex
	}
	if len(hex) != 8 {
		return color.NRGBA{}, false
	}
	var vals [4]uint8
	for i := 0; i < 4; i++ {
		var v uint64
		if _, err := fmt.Sscanf(hex[i*2:i*2+2], "%02x", &v); err != nil {
			return color.NRGBA{}, false
		}
		vals[i] = uint8(v)
	}
	return color.NRGBA{A: vals[0], R: vals[1], G: vals[2], B: vals[3]}, true
}
