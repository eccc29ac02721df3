package core

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	// A formula that is exactly one (optionally sheet-qualified) reference.
	singleSheetRefPattern = regexp.MustCompile(`^'?([^'!]+)'?!\$?([A-Z]+)\$?([0-9]+)$`)
	singleBareRefPattern  = regexp.MustCompile(`^\$?([A-Z]+)\$?([0-9]+)$`)

	// Conservative safety filter: any character outside this set rejects the
	// whole formula rather than risking a misparse.
	disallowedCharPattern = regexp.MustCompile(`[^0-9A-Za-z_!+*/\-().\s]`)

	quotedSheetRefPattern = regexp.MustCompile(`'([^']+)'!\$?([A-Z]+)\$?([0-9]+)`)
	bareSheetRefPattern   = regexp.MustCompile(`([A-Za-z0-9 _.-]+)!\$?([A-Z]+)\$?([0-9]+)`)
	bareRefPattern        = regexp.MustCompile(`\$?([A-Z]+)\$?([0-9]+)`)
)

// ResolutionCache memoizes resolved cell values for one resolution pass and
// carries the in-progress set that breaks circular reference chains. It is
// created by the caller of a pass and never shared across workbooks: keys are
// qualified by sheet name only.
type ResolutionCache struct {
	values     map[string]string
	inProgress map[string]struct{}
}

func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{
		values:     make(map[string]string),
		inProgress: make(map[string]struct{}),
	}
}

func cacheKey(sheet, addr string) string {
	return sheet + "::" + addr
}

// Resolver computes display-ready cell values for one workbook: literals pass
// through, formulas are resolved recursively across sheets, and failures
// degrade to the empty string so one bad cell never aborts a sheet.
type Resolver struct {
	File      CalcFile
	Formats   *FormatTable
	DataSheet string // fast-path target sheet for direct data references

	dataRefPattern *regexp.Regexp
}

func NewResolver(f CalcFile, formats *FormatTable, dataSheet string) *Resolver {
	r := &Resolver{File: f, Formats: formats, DataSheet: dataSheet}
	if dataSheet != "" {
		r.dataRefPattern = regexp.MustCompile(
			`(?i)^=?\s*` + regexp.QuoteMeta(dataSheet) + `!\$?([A-Za-z]+)\$?([0-9]+)`)
	}
	return r
}

// Resolve returns the raw display value of a cell, before coordinate
// formatting. Each (sheet, address) is computed at most once per cache.
func (r *Resolver) Resolve(sheet, addr string, cache *ResolutionCache) string {
	if sheet == "" || addr == "" {
		return ""
	}
	key := cacheKey(sheet, addr)
	if v, ok := cache.values[key]; ok {
		return v
	}
	if _, busy := cache.inProgress[key]; busy {
		// Circular chain; resolve to empty rather than recurse forever.
		slog.Warn("formula cycle broken", "sheet", sheet, "cell", addr)
		return ""
	}
	cache.inProgress[key] = struct{}{}

	finish := func(val string) string {
		cache.values[key] = val
		delete(cache.inProgress, key)
		return val
	}

	formula, err := r.File.GetCellFormula(sheet, addr)
	if err != nil {
		return finish("")
	}

	if formula == "" {
		if t, ok := cellDate(r.File, sheet, addr); ok {
			// Fixed day/month/year rendering, independent of system locale.
			return finish(t.Format("02/01/2006"))
		}
		raw, err := r.File.GetCellRawValue(sheet, addr)
		if err != nil {
			return finish("")
		}
		return finish(raw)
	}

	// A previously computed result stored with the formula wins over
	// re-evaluation.
	if cached, err := r.File.GetCellRawValue(sheet, addr); err == nil && cached != "" {
		return finish(cached)
	}

	return finish(r.evalFormula(sheet, formula, cache))
}

func (r *Resolver) evalFormula(sheet, formula string, cache *ResolutionCache) string {
	expr := strings.TrimPrefix(formula, "=")

	// A formula that is just one reference returns the target value verbatim.
	if m := singleSheetRefPattern.FindStringSubmatch(expr); m != nil {
		target := findSheet(r.File, m[1])
		if target == "" {
			target = sheet // missing sheet falls back to the current one
		}
		return r.Resolve(target, m[2]+m[3], cache)
	}
	if m := singleBareRefPattern.FindStringSubmatch(expr); m != nil {
		return r.Resolve(sheet, m[1]+m[2], cache)
	}

	if disallowedCharPattern.MatchString(expr) {
		slog.Warn("formula rejected by safety filter", "sheet", sheet, "formula", formula)
		return ""
	}

	resolveNumeric := func(refSheet, refAddr string) string {
		val := r.Resolve(refSheet, refAddr, cache)
		if n, err := parseFloat(val); err == nil {
			return formatFloat(n)
		}
		return "0"
	}

	expr = quotedSheetRefPattern.ReplaceAllStringFunc(expr, func(m string) string {
		g := quotedSheetRefPattern.FindStringSubmatch(m)
		target := findSheet(r.File, g[1])
		if target == "" {
			target = sheet
		}
		return resolveNumeric(target, g[2]+g[3])
	})
	expr = bareSheetRefPattern.ReplaceAllStringFunc(expr, func(m string) string {
		g := bareSheetRefPattern.FindStringSubmatch(m)
		target := findSheet(r.File, strings.TrimSpace(g[1]))
		if target == "" {
			target = sheet
		}
		return resolveNumeric(target, g[2]+g[3])
	})
	expr = bareRefPattern.ReplaceAllStringFunc(expr, func(m string) string {
		g := bareRefPattern.FindStringSubmatch(m)
		return resolveNumeric(sheet, g[1]+g[2])
	})

	result, err := evalArithmetic(expr)
	if err != nil {
		slog.Warn("formula evaluation failed", "sheet", sheet, "formula", formula, "error", err)
		return ""
	}
	return formatFloat(result)
}

// CellDisplay returns the fully formatted display text for a cell: the
// engine's own display value when available, a direct read of the data sheet
// for plain data references, full resolution otherwise, always piped through
// the coordinate format table.
func (r *Resolver) CellDisplay(sheet, addr string, cache *ResolutionCache) string {
	formula, err := r.File.GetCellFormula(sheet, addr)
	if err != nil {
		return r.Formats.Apply("", addr)
	}

	if formula == "" {
		if t, ok := cellDate(r.File, sheet, addr); ok {
			return r.Formats.Apply(t.Format("02/01/2006"), addr)
		}
		text, err := r.File.GetCellValue(sheet, addr)
		if err == nil && strings.TrimSpace(text) != "" {
			return r.Formats.Apply(strings.TrimSpace(text), addr)
		}
		return r.Formats.Apply("", addr)
	}

	// Direct data-sheet references skip evaluation and read the target cell.
	if refAddr, ok := r.directDataRef(formula); ok {
		if dataSheet := findSheet(r.File, r.DataSheet); dataSheet != "" {
			if text, err := r.File.GetCellValue(dataSheet, refAddr); err == nil {
				return r.Formats.Apply(text, addr)
			}
		}
	}

	if computed := r.Resolve(sheet, addr, cache); computed != "" {
		return r.Formats.Apply(computed, addr)
	}

	// Last resort: whatever display text the engine stored with the formula.
	if text, err := r.File.GetCellValue(sheet, addr); err == nil && text != "" {
		return r.Formats.Apply(text, addr)
	}
	return r.Formats.Apply("", addr)
}

// directDataRef matches a formula whose head is a reference into the data
// sheet, e.g. "=data!$B$4". Matching is case-insensitive on the sheet name.
func (r *Resolver) directDataRef(formula string) (string, bool) {
	if r.dataRefPattern == nil {
		return "", false
	}
	m := r.dataRefPattern.FindStringSubmatch(strings.TrimSpace(formula))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]) + m[2], true
}
