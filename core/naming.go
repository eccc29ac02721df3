package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	multiSpace      = regexp.MustCompile(`\s+`)
	datePlaceholder = regexp.MustCompile(`\$\{date:([a-z]+):([a-z]+):(-?[0-9]+)\}`)
)

// sanitizeName strips filesystem-unsafe characters from an asset or location
// name so it can become a folder, file or sheet name.
func sanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "-")
}

// normalizeKey canonicalizes a name for folder-to-document matching:
// sanitized, single-spaced, trimmed.
func normalizeKey(name string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(sanitizeName(name), " "))
}

// uniqueSheetName returns base (or a fallback when base is empty) suffixed
// with _1, _2, ... until it does not collide with a used name.
func uniqueSheetName(used map[string]bool, base string, fallbackIndex int) string {
	name := sanitizeName(base)
	if name == "" {
		name = fmt.Sprintf("Sheet_%d", fallbackIndex)
	}
	candidate := name
	for i := 1; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	used[candidate] = true
	return candidate
}

// ResolveDynamicName expands ${date:format:unit:offset} placeholders inside a
// folder name, e.g. "تقييم ${date:month:day:0}" becomes "تقييم 2026-08".
// Formats: day (2006-01-02), month (2006-01), year (2006). Units: day, month,
// year, shifted by the signed offset. Unknown expressions are left untouched.
func ResolveDynamicName(name string, base time.Time) string {
	return datePlaceholder.ReplaceAllStringFunc(name, func(m string) string {
		g := datePlaceholder.FindStringSubmatch(m)
		offset, err := strconv.Atoi(g[3])
		if err != nil {
			return m
		}
		t := base
		switch g[2] {
		case "day":
			t = t.AddDate(0, 0, offset)
		case "month":
			t = t.AddDate(0, offset, 0)
		case "year":
			t = t.AddDate(offset, 0, 0)
		default:
			return m
		}
		switch g[1] {
		case "day":
			return t.Format("2006-01-02")
		case "month":
			return t.Format("2006-01")
		case "year":
			return t.Format("2006")
		default:
			return m
		}
	})
}

// naturalLess orders names the way a file browser does: embedded digit runs
// compare numerically, everything else byte-wise case-insensitively.
func naturalLess(a, b string) bool {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ac, bc := a[ai], b[bi]
		if isDigit(ac) && isDigit(bc) {
			aStart, bStart := ai, bi
			for ai < len(a) && isDigit(a[ai]) {
				ai++
			}
			for bi < len(b) && isDigit(b[bi]) {
				bi++
			}
			an := strings.TrimLeft(a[aStart:ai], "0")
			bn := strings.TrimLeft(b[bStart:bi], "0")
			if len(an) != len(bn) {
				return len(an) < len(bn)
			}
			if an != bn {
				return an < bn
			}
			continue
		}
		al, bl := lowerByte(ac), lowerByte(bc)
		if al != bl {
			return al < bl
		}
		ai++
		bi++
	}
	return len(a)-ai < len(b)-bi
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
