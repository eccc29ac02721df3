package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var cellAddrPattern = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)

// splitAddress splits "K3" into column letters and row number.
func splitAddress(addr string) (col string, row int, ok bool) {
	m := cellAddrPattern.FindStringSubmatch(addr)
	if m == nil {
		return "", 0, false
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], row, true
}

// columnIndex converts column letters to a 1-based index (A=1, Z=26, AA=27).
func columnIndex(name string) int {
	idx := 0
	for _, r := range name {
		if r < 'A' || r > 'Z' {
			return 0
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx
}

// Helper to parse "A1:B2"
func parseRange(ref string) (int, int, int, int, error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("invalid range: %s", ref)
	}
	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	c2, r2, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return c1, r1, c2, r2, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// formatFloat renders a float the shortest way that round-trips, matching how
// spreadsheet engines print plain numbers (no trailing zeros, no exponent for
// common magnitudes).
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
