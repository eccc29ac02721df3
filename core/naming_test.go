package core

import (
	"testing"
	"time"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "  مرسيدس أكتروس ", want: "مرسيدس أكتروس"},
		{input: `a/b\c:d`, want: "a-b-c-d"},
		{input: "name?*<>", want: "name----"},
		{input: "", want: ""},
		{input: "plain", want: "plain"},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.input); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := normalizeKey("  12-  شاحنة   مان "); got != "12- شاحنة مان" {
		t.Errorf("normalizeKey = %q", got)
	}
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}

	if got := uniqueSheetName(used, "truck", 2); got != "truck" {
		t.Errorf("first name = %q, want truck", got)
	}
	if got := uniqueSheetName(used, "truck", 3); got != "truck_1" {
		t.Errorf("collision name = %q, want truck_1", got)
	}
	if got := uniqueSheetName(used, "truck", 4); got != "truck_2" {
		t.Errorf("second collision = %q, want truck_2", got)
	}
	if got := uniqueSheetName(used, "", 5); got != "Sheet_5" {
		t.Errorf("empty base = %q, want Sheet_5", got)
	}
}

func TestResolveDynamicName(t *testing.T) {
	base := time.Date(2023, 5, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Static", input: "تقييم نهائي", want: "تقييم نهائي"},
		{name: "Today", input: "job-${date:day:day:0}", want: "job-2023-05-15"},
		{name: "Yesterday", input: "${date:day:day:-1}", want: "2023-05-14"},
		{name: "Month Format", input: "${date:month:month:0}", want: "2023-05"},
		{name: "Next Year", input: "${date:year:year:1}", want: "2024"},
		{name: "Unknown Unit Untouched", input: "${date:day:week:1}", want: "${date:day:week:1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDynamicName(tt.input, base); got != tt.want {
				t.Errorf("ResolveDynamicName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{a: "img2", b: "img10", want: true},
		{a: "img10", b: "img2", want: false},
		{a: "IMG5", b: "img5a", want: true},
		{a: "a", b: "b", want: true},
		{a: "photo_002", b: "photo_10", want: true},
		{a: "same", b: "same", want: false},
	}
	for _, tt := range tests {
		if got := naturalLess(tt.a, tt.b); got != tt.want {
			t.Errorf("naturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
