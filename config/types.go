package config

// CellRange: cell range config
type CellRange struct {
	Ref string `json:"ref" yaml:"ref"` // e.g. "G6:G8"
}

// FormatRules maps coordinate rectangles to display formatting, independent of
// the workbook's stored number formats. Priority when formatting a cell:
// percent, then currency, then no-comma/default numeric, else passthrough.
type FormatRules struct {
	Percent        []CellRange `json:"percent"        yaml:"percent"`
	Currency       []CellRange `json:"currency"       yaml:"currency"`
	NoComma        []CellRange `json:"noComma"        yaml:"noComma"`
	ZeroExclusions []CellRange `json:"zeroExclusions" yaml:"zeroExclusions"`
	CurrencySuffix string      `json:"currencySuffix" yaml:"currencySuffix"`
}

// RenderOptions controls the sheet rasterizer.
type RenderOptions struct {
	WindowRows     int     `json:"windowRows"     yaml:"windowRows"`
	WindowCols     int     `json:"windowCols"     yaml:"windowCols"`
	Scale          int     `json:"scale"          yaml:"scale"`
	Padding        int     `json:"padding"        yaml:"padding"`
	BaseFontSize   float64 `json:"baseFontSize"   yaml:"baseFontSize"`
	HeaderFontSize float64 `json:"headerFontSize" yaml:"headerFontSize"`
	BoldRows       []int   `json:"boldRows,omitempty" yaml:"boldRows,omitempty"`

	// Optional TTF paths; the built-in Go fonts are used when empty.
	RegularFontPath string `json:"regularFont,omitempty" yaml:"regularFont,omitempty"`
	BoldFontPath    string `json:"boldFont,omitempty"    yaml:"boldFont,omitempty"`
}

// DocxOptions controls image embedding into the report documents.
type DocxOptions struct {
	SheetMarker    string `json:"sheetMarker"    yaml:"sheetMarker"`
	PreviewMarker  string `json:"previewMarker"  yaml:"previewMarker"`
	GalleryCaption string `json:"galleryCaption" yaml:"galleryCaption"`

	SheetImageWidthPx    int `json:"sheetImageWidthPx"    yaml:"sheetImageWidthPx"`
	SheetImageHeightPx   int `json:"sheetImageHeightPx"   yaml:"sheetImageHeightPx"`
	PreviewImageWidthPx  int `json:"previewImageWidthPx"  yaml:"previewImageWidthPx"`
	PreviewImageHeightPx int `json:"previewImageHeightPx" yaml:"previewImageHeightPx"`
	ImagesPerRow         int `json:"imagesPerRow"         yaml:"imagesPerRow"`

	// Paragraph/table spacing, in twentieths of a point.
	LeftIndentTwips    int `json:"leftIndentTwips"    yaml:"leftIndentTwips"`
	RightIndentTwips   int `json:"rightIndentTwips"   yaml:"rightIndentTwips"`
	SpacingBeforeTwips int `json:"spacingBeforeTwips" yaml:"spacingBeforeTwips"`
	TableIndentTwips   int `json:"tableIndentTwips"   yaml:"tableIndentTwips"`
}

// DataRef wires one template-sheet cell to a column of the data sheet. The row
// index is supplied per asset when the sheet is generated.
type DataRef struct {
	Cell   string `json:"cell"   yaml:"cell"`   // e.g. "C3"
	Column string `json:"column" yaml:"column"` // e.g. "B"
}

// InlineFormula places a same-sheet formula into the template sheet.
type InlineFormula struct {
	Cell    string `json:"cell"    yaml:"cell"`
	Formula string `json:"formula" yaml:"formula"`
}

// AssetColumns names the data-sheet columns the pipeline reads asset identity from.
type AssetColumns struct {
	Number   string `json:"number"   yaml:"number"`   // plate number, default "A"
	Name     string `json:"name"     yaml:"name"`     // plate/asset name, default "B"
	Location string `json:"location" yaml:"location"` // location name, default "G"
}

// TemplateProfile is the per-template configuration bundle: folder skeleton,
// sheet wiring, format rule rectangles, render window and docx markers.
type TemplateProfile struct {
	Id   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`

	CalcTemplate   string `json:"calcTemplate"   yaml:"calcTemplate"`   // path to calc.xlsx
	ReportTemplate string `json:"reportTemplate" yaml:"reportTemplate"` // path to report.docx

	MainFolders         []string `json:"mainFolders"         yaml:"mainFolders"`
	LocationFolderIndex int      `json:"locationFolderIndex" yaml:"locationFolderIndex"`
	CalcFolderIndex     int      `json:"calcFolderIndex"     yaml:"calcFolderIndex"`
	CalcTargetName      string   `json:"calcTargetName"      yaml:"calcTargetName"`
	ImageFolder         string   `json:"imageFolder"         yaml:"imageFolder"`

	TemplateSheet string `json:"templateSheet" yaml:"templateSheet"` // "calc"
	DataSheet     string `json:"dataSheet"     yaml:"dataSheet"`     // "data"

	DataRefs       []DataRef       `json:"dataRefs"       yaml:"dataRefs"`
	InlineFormulas []InlineFormula `json:"inlineFormulas" yaml:"inlineFormulas"`

	Columns AssetColumns  `json:"columns" yaml:"columns"`
	Format  FormatRules   `json:"format"  yaml:"format"`
	Render  RenderOptions `json:"render"  yaml:"render"`
	Docx    DocxOptions   `json:"docx"    yaml:"docx"`
}
