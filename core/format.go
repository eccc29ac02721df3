package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"valugen/config"
)

type rect struct {
	c1, r1, c2, r2 int
}

func (r rect) contains(col, row int) bool {
	return col >= r.c1 && col <= r.c2 && row >= r.r1 && row <= r.r2
}

// FormatTable applies display formatting by cell coordinate, compiled from a
// profile's rule rectangles. The workbook's stored number formats are ignored;
// the template's coordinates decide everything.
type FormatTable struct {
	percent        []rect
	currency       []rect
	noComma        []rect
	zeroExclusions []rect
	currencySuffix string
}

// NewFormatTable compiles the profile rule ranges.
func NewFormatTable(rules config.FormatRules) (*FormatTable, error) {
	compile := func(name string, ranges []config.CellRange) ([]rect, error) {
		out := make([]rect, 0, len(ranges))
		for _, cr := range ranges {
			c1, r1, c2, r2, err := parseRange(cr.Ref)
			if err != nil {
				return nil, fmt.Errorf("format rule %s: %w", name, err)
			}
			out = append(out, rect{c1: c1, r1: r1, c2: c2, r2: r2})
		}
		return out, nil
	}

	percent, err := compile("percent", rules.Percent)
	if err != nil {
		return nil, err
	}
	currency, err := compile("currency", rules.Currency)
	if err != nil {
		return nil, err
	}
	noComma, err := compile("noComma", rules.NoComma)
	if err != nil {
		return nil, err
	}
	zeroExcl, err := compile("zeroExclusions", rules.ZeroExclusions)
	if err != nil {
		return nil, err
	}

	return &FormatTable{
		percent:        percent,
		currency:       currency,
		noComma:        noComma,
		zeroExclusions: zeroExcl,
		currencySuffix: rules.CurrencySuffix,
	}, nil
}

// CurrencySuffix returns the configured currency suffix text.
func (t *FormatTable) CurrencySuffix() string {
	return t.currencySuffix
}

func inAny(ranges []rect, col, row int) bool {
	for _, r := range ranges {
		if r.contains(col, row) {
			return true
		}
	}
	return false
}

// Apply formats a raw resolved value for display at the given cell address.
// Exactly one branch applies: percent, then currency, then no-comma/default
// numeric, else passthrough. Empty raw values become "0" outside the zero-fill
// exclusion rectangles.
func (t *FormatTable) Apply(rawValue, cellAddress string) string {
	colName, row, ok := splitAddress(cellAddress)
	if !ok {
		return rawValue
	}
	col := columnIndex(colName)

	value := rawValue
	if value == "" {
		if inAny(t.zeroExclusions, col, row) {
			return ""
		}
		value = "0"
	}

	if inAny(t.percent, col, row) {
		return t.formatPercent(value)
	}

	if inAny(t.currency, col, row) {
		numStr := value
		if strings.TrimSpace(numStr) == "" {
			numStr = "0"
		}
		return formatNumberWithCommas(numStr) + " " + t.currencySuffix
	}

	if isNumericString(value) {
		if inAny(t.noComma, col, row) {
			return value
		}
		return formatNumberWithCommas(value)
	}

	return value
}

// formatPercent converts fractions (<=1 in magnitude) to percentages, rounds
// to 2 decimals, trims trailing decimal zeros and thousands-formats the result.
func (t *FormatTable) formatPercent(value string) string {
	numStr := strings.TrimSpace(value)
	if numStr == "" {
		numStr = "0"
	}
	numVal, err := parseFloat(strings.ReplaceAll(numStr, "%", ""))
	if err != nil {
		return numStr + "%"
	}
	if math.Abs(numVal) <= 1 {
		numVal *= 100
	}
	rounded := math.Round(numVal*100) / 100

	var display string
	if rounded == math.Trunc(rounded) {
		display = formatFloat(rounded)
	} else {
		display = strconv.FormatFloat(rounded, 'f', 2, 64)
		display = strings.TrimRight(display, "0")
		display = strings.TrimRight(display, ".")
	}
	return formatNumberWithCommas(display) + "%"
}

// formatNumberWithCommas inserts thousands separators into the integer part of
// a numeric string once its magnitude reaches 1000; the decimal part is kept
// unchanged. Non-numeric input passes through untouched.
func formatNumberWithCommas(str string) string {
	num, err := parseFloat(str)
	if err != nil {
		return str
	}
	if math.Abs(num) < 1000 {
		return str
	}

	canonical := formatFloat(num)
	intPart, decPart, hasDec := strings.Cut(canonical, ".")

	neg := strings.HasPrefix(intPart, "-")
	digits := strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if hasDec {
		b.WriteByte('.')
		b.WriteString(decPart)
	}
	return b.String()
}
