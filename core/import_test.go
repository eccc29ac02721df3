package core

import (
	"os"
	"path/filepath"
	"testing"

	"valugen/config"
)

func TestImportAssets(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "assets.csv")
	content := "number,name,location\n101,Truck,Riyadh\n102,Crane,Jeddah\n"
	if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	outPath := filepath.Join(dir, "data.xlsx")
	spec := ImportSpec{Source: "assets", Columns: []string{"number", "name", "location"}}
	rows, err := ImportAssets(NewCsvRowFetcher(dir), spec, "data", outPath)
	if err != nil {
		t.Fatalf("ImportAssets: %v", err)
	}
	if rows != 2 {
		t.Errorf("rows = %d, want 2", rows)
	}

	f, err := OpenCalcFile(outPath)
	if err != nil {
		t.Fatalf("open output workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("data", "A1"); got != "number" {
		t.Errorf("header A1 = %q", got)
	}
	if got, _ := f.GetCellValue("data", "B2"); got != "Truck" {
		t.Errorf("B2 = %q, want Truck", got)
	}
	if got, _ := f.GetCellValue("data", "C3"); got != "Jeddah" {
		t.Errorf("C3 = %q, want Jeddah", got)
	}
}

func TestImportAssets_FieldColumns(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "assets.csv")
	content := "asset_no,asset_name,site,remark\n101,Truck,Riyadh,used\n"
	if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	outPath := filepath.Join(dir, "data.xlsx")
	spec := ImportSpec{
		Source:       "assets",
		FieldColumns: AssetFieldColumns(config.DefaultProfile().Columns, "asset_no", "asset_name", "site"),
	}
	if _, err := ImportAssets(NewCsvRowFetcher(dir), spec, "data", outPath); err != nil {
		t.Fatalf("ImportAssets: %v", err)
	}

	f, err := OpenCalcFile(outPath)
	if err != nil {
		t.Fatalf("open output workbook: %v", err)
	}
	defer f.Close()

	// Identity fields land in the profile's asset columns, extras after them.
	checks := map[string]string{
		"A2": "101", "B2": "Truck", "G2": "Riyadh", "H2": "used",
		"A1": "asset_no", "H1": "remark",
	}
	for addr, want := range checks {
		if got, _ := f.GetCellValue("data", addr); got != want {
			t.Errorf("%s = %q, want %q", addr, got, want)
		}
	}
}

func TestImportAssets_EmptySource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.csv"), []byte("number,name\n"), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	_, err := ImportAssets(NewCsvRowFetcher(dir), ImportSpec{Source: "empty"}, "data",
		filepath.Join(dir, "out.xlsx"))
	if err == nil {
		t.Fatal("expected error for an empty source")
	}
}
