package core

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"valugen/config"
)

// Service runs the valuation pipeline steps for one template profile. Each
// step reads its inputs from disk, so steps can run back to back or days
// apart against the same job folder.
type Service struct {
	Profile *config.TemplateProfile

	folders *FolderBuilder
	sheets  *SheetBuilder
}

func NewService(profile *config.TemplateProfile) *Service {
	return &Service{
		Profile: profile,
		folders: NewFolderBuilder(profile),
		sheets:  NewSheetBuilder(profile),
	}
}

// Request identifies one job: where it lives and which data workbook drives it.
type Request struct {
	BasePath      string
	FolderName    string
	DataExcelPath string
}

func (r Request) validate(needData bool) error {
	if r.BasePath == "" || r.FolderName == "" {
		return fmt.Errorf("basePath and folderName are required")
	}
	if needData && r.DataExcelPath == "" {
		return fmt.Errorf("dataExcelPath is required")
	}
	return nil
}

// resolveFolder expands date placeholders in the job folder name.
func (s *Service) resolveFolder(req Request) string {
	return ResolveDynamicName(req.FolderName, time.Now())
}

// CreateFoldersResult reports the folder scaffold built for a job.
type CreateFoldersResult struct {
	Ok          bool     `json:"ok"`
	Root        string   `json:"root,omitempty"`
	MainFolders []string `json:"mainFolders,omitempty"`
	Locations   int      `json:"locations"`
	Plates      int      `json:"plates"`
	Error       string   `json:"error,omitempty"`
}

// CreateFolders builds the deliverable directory skeleton from the data
// workbook's locations and plates.
func (s *Service) CreateFolders(req Request) CreateFoldersResult {
	if err := req.validate(true); err != nil {
		return CreateFoldersResult{Error: err.Error()}
	}
	table, err := s.readDataTable(req.DataExcelPath)
	if err != nil {
		return CreateFoldersResult{Error: err.Error()}
	}
	tree, err := s.folders.Create(req.BasePath, s.resolveFolder(req), table)
	if err != nil {
		return CreateFoldersResult{Error: err.Error()}
	}
	return CreateFoldersResult{
		Ok:          true,
		Root:        tree.Root,
		MainFolders: tree.SubFolders,
		Locations:   tree.LocationsCreated,
		Plates:      tree.PlatesCreated,
	}
}

// UpdateCalcResult reports the prepared calc workbook.
type UpdateCalcResult struct {
	Ok            bool   `json:"ok"`
	Root          string `json:"root,omitempty"`
	CalcPath      string `json:"calcPath,omitempty"`
	SheetsCreated int    `json:"sheetsCreated"`
	Error         string `json:"error,omitempty"`
}

// UpdateCalc copies the calc template into the job folder, mirrors the data
// sheet into it, and clones one wired worksheet per asset.
func (s *Service) UpdateCalc(req Request) UpdateCalcResult {
	if err := req.validate(true); err != nil {
		return UpdateCalcResult{Error: err.Error()}
	}
	folderName := s.resolveFolder(req)
	targetDir := s.folders.DocxTargetDir(req.BasePath, folderName)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return UpdateCalcResult{Error: fmt.Sprintf("create target dir: %v", err)}
	}

	calcPath := filepath.Join(targetDir, s.Profile.CalcTargetName)
	if err := copyFile(s.Profile.CalcTemplate, calcPath); err != nil {
		return UpdateCalcResult{Error: fmt.Sprintf("copy calc template: %v", err)}
	}

	calc, err := OpenCalcFile(calcPath)
	if err != nil {
		return UpdateCalcResult{Error: err.Error()}
	}
	defer calc.Close()
	data, err := OpenCalcFile(req.DataExcelPath)
	if err != nil {
		return UpdateCalcResult{Error: err.Error()}
	}
	defer data.Close()

	if err := s.sheets.MirrorDataSheet(calc, data); err != nil {
		return UpdateCalcResult{Error: err.Error()}
	}
	created, err := s.sheets.BuildAssetSheets(calc, data)
	if err != nil {
		return UpdateCalcResult{Error: err.Error()}
	}
	if err := calc.SaveAs(calcPath); err != nil {
		return UpdateCalcResult{Error: fmt.Sprintf("save calc workbook: %v", err)}
	}

	return UpdateCalcResult{
		Ok:            true,
		Root:          filepath.Join(req.BasePath, folderName),
		CalcPath:      calcPath,
		SheetsCreated: created,
	}
}

// CreateDocxResult reports the generated report files.
type CreateDocxResult struct {
	Ok        bool   `json:"ok"`
	TargetDir string `json:"targetDir,omitempty"`
	Created   int    `json:"created"`
	Error     string `json:"error,omitempty"`
}

// CreateDocx stamps out one report document per asset row of the calc
// workbook's data sheet, named "{number}- {name}.docx".
func (s *Service) CreateDocx(req Request) CreateDocxResult {
	if err := req.validate(false); err != nil {
		return CreateDocxResult{Error: err.Error()}
	}
	if _, err := os.Stat(s.Profile.ReportTemplate); err != nil {
		return CreateDocxResult{Error: fmt.Sprintf("report template missing: %v", err)}
	}

	folderName := s.resolveFolder(req)
	targetDir := s.folders.DocxTargetDir(req.BasePath, folderName)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return CreateDocxResult{Error: fmt.Sprintf("create target dir: %v", err)}
	}

	calcPath := filepath.Join(targetDir, s.Profile.CalcTargetName)
	table, err := s.readCalcTable(calcPath)
	if err != nil {
		return CreateDocxResult{Error: err.Error()}
	}

	created := 0
	for _, row := range table.Rows {
		if row.Name == "" {
			continue
		}
		dest := filepath.Join(targetDir, row.DocxName())
		if err := copyFile(s.Profile.ReportTemplate, dest); err != nil {
			return CreateDocxResult{Error: fmt.Sprintf("copy report template: %v", err)}
		}
		created++
	}

	return CreateDocxResult{Ok: true, TargetDir: targetDir, Created: created}
}

// ValueCalculationsResult reports the rendered sheet images and the reports
// they were embedded into.
type ValueCalculationsResult struct {
	Ok          bool   `json:"ok"`
	Root        string `json:"root,omitempty"`
	TargetDir   string `json:"targetDir,omitempty"`
	CalcPath    string `json:"calcPath,omitempty"`
	ImagesDir   string `json:"imagesDir,omitempty"`
	Processed   int    `json:"processed"`
	Skipped     int    `json:"skipped"`
	SavedImages int    `json:"savedImages"`
	Error       string `json:"error,omitempty"`
}

// ValueCalculations renders each asset's worksheet window to a PNG, saves it
// under the image folder, and embeds it into the asset's report after the
// attachment marker. Assets whose report or worksheet is missing are skipped.
func (s *Service) ValueCalculations(req Request) ValueCalculationsResult {
	if err := req.validate(false); err != nil {
		return ValueCalculationsResult{Error: err.Error()}
	}
	folderName := s.resolveFolder(req)
	targetDir := s.folders.DocxTargetDir(req.BasePath, folderName)
	calcPath := filepath.Join(targetDir, s.Profile.CalcTargetName)
	imagesDir := filepath.Join(targetDir, s.Profile.ImageFolder)

	calc, err := OpenCalcFile(calcPath)
	if err != nil {
		return ValueCalculationsResult{Error: err.Error()}
	}
	defer calc.Close()

	dataName := findSheet(calc, s.Profile.DataSheet)
	if dataName == "" {
		if list := calc.GetSheetList(); len(list) > 0 {
			dataName = list[0]
		}
	}
	if dataName == "" {
		return ValueCalculationsResult{Error: "calc workbook has no data sheet"}
	}

	table, err := ReadAssetTable(calc, dataName, s.Profile.Columns)
	if err != nil {
		return ValueCalculationsResult{Error: err.Error()}
	}
	entries := table.SheetEntries(calc)

	formats, err := NewFormatTable(s.Profile.Format)
	if err != nil {
		return ValueCalculationsResult{Error: err.Error()}
	}
	resolver := NewResolver(calc, formats, dataName)
	rasterizer, err := NewRasterizer(s.Profile.Render, s.Profile.Format.CurrencySuffix)
	if err != nil {
		return ValueCalculationsResult{Error: err.Error()}
	}
	embedder := NewImageEmbedder(s.Profile.Docx)

	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return ValueCalculationsResult{Error: fmt.Sprintf("create images dir: %v", err)}
	}

	result := ValueCalculationsResult{
		Root:      filepath.Join(req.BasePath, folderName),
		TargetDir: targetDir,
		CalcPath:  calcPath,
		ImagesDir: imagesDir,
	}
	for _, entry := range entries {
		if entry.SheetName == "" {
			slog.Warn("no worksheet for asset, skipping", "asset", entry.Row.Name, "row", entry.Row.Index)
			result.Skipped++
			continue
		}
		docxPath := filepath.Join(targetDir, entry.Row.DocxName())
		if _, err := os.Stat(docxPath); err != nil {
			result.Skipped++
			continue
		}

		image, err := rasterizer.RenderSheet(resolver, entry.SheetName)
		if err != nil {
			result.Error = fmt.Sprintf("render sheet %s: %v", entry.SheetName, err)
			return result
		}
		imagePath := filepath.Join(imagesDir, entry.Row.ImageName())
		if err := os.WriteFile(imagePath, image.PNG, 0o644); err != nil {
			result.Error = fmt.Sprintf("save sheet image: %v", err)
			return result
		}
		result.SavedImages++

		pkg, err := OpenDocxPackage(docxPath)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		if err := embedder.EmbedSheetImage(pkg, image.PNG); err != nil {
			result.Error = err.Error()
			return result
		}
		if err := pkg.Save(docxPath); err != nil {
			result.Error = err.Error()
			return result
		}
		result.Processed++
	}

	result.Ok = true
	return result
}

// AppendPreviewsResult reports the preview galleries added to reports.
type AppendPreviewsResult struct {
	Ok             bool   `json:"ok"`
	Root           string `json:"root,omitempty"`
	PreviewRoot    string `json:"previewRoot,omitempty"`
	TargetDir      string `json:"targetDir,omitempty"`
	Processed      int    `json:"processed"`
	Skipped        int    `json:"skipped"`
	ImagesAppended int    `json:"imagesAppended"`
	Error          string `json:"error,omitempty"`
}

// AppendPreviewImages matches photographed asset folders to reports by
// normalized name and rebuilds each matched report's preview gallery table.
func (s *Service) AppendPreviewImages(req Request) AppendPreviewsResult {
	if err := req.validate(false); err != nil {
		return AppendPreviewsResult{Error: err.Error()}
	}
	folderName := s.resolveFolder(req)
	previewRoot := s.folders.PreviewRootDir(req.BasePath, folderName)
	targetDir := s.folders.DocxTargetDir(req.BasePath, folderName)

	if _, err := os.Stat(previewRoot); err != nil {
		return AppendPreviewsResult{Error: fmt.Sprintf("preview folder missing: %v", err)}
	}
	dirEntries, err := os.ReadDir(targetDir)
	if err != nil {
		return AppendPreviewsResult{Error: fmt.Sprintf("reports folder missing: %v", err)}
	}

	sets, err := CollectPreviewSets(previewRoot)
	if err != nil {
		return AppendPreviewsResult{Error: err.Error()}
	}

	embedder := NewImageEmbedder(s.Profile.Docx)
	result := AppendPreviewsResult{
		Root:        filepath.Join(req.BasePath, folderName),
		PreviewRoot: previewRoot,
		TargetDir:   targetDir,
	}
	for _, ent := range dirEntries {
		if ent.IsDir() || !strings.EqualFold(filepath.Ext(ent.Name()), ".docx") {
			continue
		}
		base := strings.TrimSuffix(ent.Name(), filepath.Ext(ent.Name()))
		paths := sets[normalizeKey(base)]
		if len(paths) == 0 {
			result.Skipped++
			continue
		}
		images := LoadPreviewImages(paths)
		if len(images) == 0 {
			result.Skipped++
			continue
		}

		docxPath := filepath.Join(targetDir, ent.Name())
		pkg, err := OpenDocxPackage(docxPath)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		appended, err := embedder.AppendPreviewGallery(pkg, images)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		if err := pkg.Save(docxPath); err != nil {
			result.Error = err.Error()
			return result
		}
		result.Processed++
		result.ImagesAppended += appended
	}

	result.Ok = true
	return result
}

// readDataTable opens a standalone data workbook and reads its asset rows.
func (s *Service) readDataTable(path string) (*AssetTable, error) {
	data, err := OpenCalcFile(path)
	if err != nil {
		return nil, err
	}
	defer data.Close()

	name := findSheet(data, s.Profile.DataSheet)
	if name == "" {
		if list := data.GetSheetList(); len(list) > 0 {
			name = list[0]
		}
	}
	if name == "" {
		return nil, fmt.Errorf("data workbook has no sheets")
	}
	return ReadAssetTable(data, name, s.Profile.Columns)
}

// readCalcTable reads asset rows from a prepared calc workbook's data sheet.
func (s *Service) readCalcTable(calcPath string) (*AssetTable, error) {
	calc, err := OpenCalcFile(calcPath)
	if err != nil {
		return nil, err
	}
	defer calc.Close()

	name := findSheet(calc, s.Profile.DataSheet)
	if name == "" {
		if list := calc.GetSheetList(); len(list) > 0 {
			name = list[0]
		}
	}
	if name == "" {
		return nil, fmt.Errorf("calc workbook has no data sheet")
	}
	return ReadAssetTable(calc, name, s.Profile.Columns)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Run executes a sequence of pipeline steps in order, logging each result.
func (s *Service) Run(req Request, steps []string) error {
	for _, step := range steps {
		switch step {
		case "folders":
			res := s.CreateFolders(req)
			if !res.Ok {
				return fmt.Errorf("create folders: %s", res.Error)
			}
			slog.Info("folders created", "root", res.Root, "locations", res.Locations, "plates", res.Plates)
		case "calc":
			res := s.UpdateCalc(req)
			if !res.Ok {
				return fmt.Errorf("update calc: %s", res.Error)
			}
			slog.Info("calc workbook prepared", "path", res.CalcPath, "sheets", res.SheetsCreated)
		case "docx":
			res := s.CreateDocx(req)
			if !res.Ok {
				return fmt.Errorf("create docx: %s", res.Error)
			}
			slog.Info("reports created", "dir", res.TargetDir, "count", res.Created)
		case "images":
			res := s.ValueCalculations(req)
			if !res.Ok {
				return fmt.Errorf("value calculations: %s", res.Error)
			}
			slog.Info("sheet images embedded", "processed", res.Processed, "skipped", res.Skipped, "saved", res.SavedImages)
		case "previews":
			res := s.AppendPreviewImages(req)
			if !res.Ok {
				return fmt.Errorf("append previews: %s", res.Error)
			}
			slog.Info("preview galleries added", "processed", res.Processed, "skipped", res.Skipped, "images", res.ImagesAppended)
		default:
			return fmt.Errorf("unknown step: %s", step)
		}
	}
	return nil
}
