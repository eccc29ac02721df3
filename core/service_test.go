package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"valugen/config"
)

// writeServiceFixtures builds the data workbook, calc template and report
// template a pipeline run needs, and returns a profile pointed at them.
func writeServiceFixtures(t *testing.T, dir string) (*config.TemplateProfile, string) {
	t.Helper()

	dataPath := filepath.Join(dir, "data.xlsx")
	data := excelize.NewFile()
	if _, err := data.NewSheet("data"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if err := data.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	cells := map[string]interface{}{
		"A1": "الرقم", "B1": "الأصل", "G1": "الموقع",
		"A2": "101", "B2": "شاحنة مان", "G2": "الرياض",
		"A3": "102", "B3": "رافعة شوكية", "G3": "جدة",
	}
	for addr, v := range cells {
		if err := data.SetCellValue("data", addr, v); err != nil {
			t.Fatalf("SetCellValue(%s): %v", addr, err)
		}
	}
	if err := data.SaveAs(dataPath); err != nil {
		t.Fatalf("save data workbook: %v", err)
	}
	data.Close()

	calcPath := filepath.Join(dir, "calc.xlsx")
	calc := excelize.NewFile()
	if _, err := calc.NewSheet("calc"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if err := calc.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	if err := calc.SetCellValue("calc", "B1", "نموذج"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := calc.SaveAs(calcPath); err != nil {
		t.Fatalf("save calc template: %v", err)
	}
	calc.Close()

	reportPath := filepath.Join(dir, "report.docx")
	profile := config.DefaultProfile()
	pkg := newTestDocx(t, profile.Docx.SheetMarker, profile.Docx.PreviewMarker)
	if err := pkg.Save(reportPath); err != nil {
		t.Fatalf("save report template: %v", err)
	}

	profile.CalcTemplate = calcPath
	profile.ReportTemplate = reportPath
	return profile, dataPath
}

func TestService_Pipeline(t *testing.T) {
	dir := t.TempDir()
	profile, dataPath := writeServiceFixtures(t, dir)
	service := NewService(profile)

	base := filepath.Join(dir, "jobs")
	req := Request{BasePath: base, FolderName: "تقييم", DataExcelPath: dataPath}

	folders := service.CreateFolders(req)
	if !folders.Ok {
		t.Fatalf("CreateFolders: %s", folders.Error)
	}
	if folders.Locations != 2 || folders.Plates != 2 {
		t.Errorf("folders = %d locations, %d plates", folders.Locations, folders.Plates)
	}

	calc := service.UpdateCalc(req)
	if !calc.Ok {
		t.Fatalf("UpdateCalc: %s", calc.Error)
	}
	if calc.SheetsCreated != 2 {
		t.Errorf("sheets created = %d, want 2", calc.SheetsCreated)
	}
	if _, err := os.Stat(calc.CalcPath); err != nil {
		t.Fatalf("calc workbook missing: %v", err)
	}

	docx := service.CreateDocx(req)
	if !docx.Ok {
		t.Fatalf("CreateDocx: %s", docx.Error)
	}
	if docx.Created != 2 {
		t.Errorf("reports created = %d, want 2", docx.Created)
	}
	reportPath := filepath.Join(docx.TargetDir, "101- شاحنة مان.docx")
	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("report missing: %v", err)
	}

	values := service.ValueCalculations(req)
	if !values.Ok {
		t.Fatalf("ValueCalculations: %s", values.Error)
	}
	if values.Processed != 2 || values.SavedImages != 2 {
		t.Errorf("values = %d processed, %d saved", values.Processed, values.SavedImages)
	}
	if _, err := os.Stat(filepath.Join(values.ImagesDir, "101- شاحنة مان.png")); err != nil {
		t.Errorf("sheet image missing: %v", err)
	}

	embedded, err := OpenDocxPackage(reportPath)
	if err != nil {
		t.Fatalf("open embedded report: %v", err)
	}
	doc, _ := embedded.Part("word/document.xml")
	if !strings.Contains(string(doc), "<w:drawing>") {
		t.Error("report has no embedded drawing")
	}

	// Drop preview photos for one asset and run the gallery step.
	previewDir := filepath.Join(folders.MainFolders[profile.LocationFolderIndex],
		"1- الرياض", "101- شاحنة مان")
	if err := os.WriteFile(filepath.Join(previewDir, "front.png"), []byte("img"), 0o644); err != nil {
		t.Fatalf("write preview: %v", err)
	}

	previews := service.AppendPreviewImages(req)
	if !previews.Ok {
		t.Fatalf("AppendPreviewImages: %s", previews.Error)
	}
	if previews.Processed != 1 || previews.Skipped != 1 {
		t.Errorf("previews = %d processed, %d skipped; want 1, 1", previews.Processed, previews.Skipped)
	}
	embedded, err = OpenDocxPackage(reportPath)
	if err != nil {
		t.Fatalf("reopen report: %v", err)
	}
	doc, _ = embedded.Part("word/document.xml")
	if !strings.Contains(string(doc), profile.Docx.GalleryCaption) {
		t.Error("report has no preview gallery")
	}
}

func TestService_ValueCalculationsMissingSheet(t *testing.T) {
	dir := t.TempDir()
	profile, dataPath := writeServiceFixtures(t, dir)
	service := NewService(profile)

	req := Request{BasePath: filepath.Join(dir, "jobs"), FolderName: "تقييم", DataExcelPath: dataPath}
	if res := service.CreateFolders(req); !res.Ok {
		t.Fatalf("CreateFolders: %s", res.Error)
	}
	calc := service.UpdateCalc(req)
	if !calc.Ok {
		t.Fatalf("UpdateCalc: %s", calc.Error)
	}
	if res := service.CreateDocx(req); !res.Ok || res.Created != 2 {
		t.Fatalf("CreateDocx: created=%d err=%s", res.Created, res.Error)
	}

	// Remove one asset's worksheet; its report stays on disk.
	f, err := excelize.OpenFile(calc.CalcPath)
	if err != nil {
		t.Fatalf("open calc workbook: %v", err)
	}
	if err := f.DeleteSheet("رافعة شوكية"); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	if err := f.SaveAs(calc.CalcPath); err != nil {
		t.Fatalf("save calc workbook: %v", err)
	}
	f.Close()

	values := service.ValueCalculations(req)
	if !values.Ok {
		t.Fatalf("ValueCalculations: %s", values.Error)
	}
	if values.Processed != 1 || values.Skipped != 1 || values.SavedImages != 1 {
		t.Errorf("values = %d processed, %d skipped, %d saved; want 1, 1, 1",
			values.Processed, values.Skipped, values.SavedImages)
	}
}

func TestService_Validation(t *testing.T) {
	service := NewService(config.DefaultProfile())

	if res := service.CreateFolders(Request{}); res.Ok || res.Error == "" {
		t.Error("CreateFolders accepted an empty request")
	}
	if res := service.UpdateCalc(Request{BasePath: "x", FolderName: "y"}); res.Ok {
		t.Error("UpdateCalc accepted a request without a data workbook")
	}
}

func TestService_DynamicFolderName(t *testing.T) {
	dir := t.TempDir()
	profile, dataPath := writeServiceFixtures(t, dir)
	service := NewService(profile)

	req := Request{
		BasePath:      dir,
		FolderName:    "job-${date:year:year:0}",
		DataExcelPath: dataPath,
	}
	res := service.CreateFolders(req)
	if !res.Ok {
		t.Fatalf("CreateFolders: %s", res.Error)
	}
	if strings.Contains(res.Root, "${date") {
		t.Errorf("placeholder not expanded: %s", res.Root)
	}
}
