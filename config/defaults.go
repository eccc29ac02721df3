package config

// DefaultProfile returns the built-in valuation template profile. The rectangles
// and sheet wiring match the shipped calc.xlsx template; a custom profile loaded
// from YAML overrides any of it.
func DefaultProfile() *TemplateProfile {
	return &TemplateProfile{
		Id:   "default",
		Name: "valuation",

		CalcTemplate:   "./templates/calc.xlsx",
		ReportTemplate: "./templates/report.docx",

		MainFolders: []string{
			"1.ملفات العميل",
			"2.صور المعاينة",
			"3.اعداد مسودة التقرير و حسابات القيمة",
			"4.التقرير بالتوقيع",
			"5.ملفات التسليم النهائية",
		},
		LocationFolderIndex: 1,
		CalcFolderIndex:     2,
		CalcTargetName:      "calc.xlsx",
		ImageFolder:         "valu calculations",

		TemplateSheet: "calc",
		DataSheet:     "data",

		DataRefs: []DataRef{
			// Header row
			{Cell: "C3", Column: "B"},
			{Cell: "D3", Column: "C"},
			{Cell: "E3", Column: "D"},
			{Cell: "F3", Column: "E"},
			{Cell: "G3", Column: "F"},
			{Cell: "H3", Column: "M"},
			{Cell: "I3", Column: "G"},
			{Cell: "J3", Column: "L"},
			{Cell: "K3", Column: "N"},
			// Valuation rows 6-8
			{Cell: "C6", Column: "C"}, {Cell: "C7", Column: "C"}, {Cell: "C8", Column: "C"},
			{Cell: "D6", Column: "D"}, {Cell: "D7", Column: "D"}, {Cell: "D8", Column: "D"},
			{Cell: "E6", Column: "O"}, {Cell: "E7", Column: "V"}, {Cell: "E8", Column: "AC"},
			{Cell: "F6", Column: "P"}, {Cell: "F7", Column: "W"}, {Cell: "F8", Column: "AD"},
			{Cell: "G6", Column: "Q"}, {Cell: "G7", Column: "X"}, {Cell: "G8", Column: "AE"},
			{Cell: "H6", Column: "T"}, {Cell: "H7", Column: "AA"}, {Cell: "H8", Column: "AH"},
			{Cell: "I6", Column: "U"}, {Cell: "I7", Column: "AB"}, {Cell: "I8", Column: "AI"},
			{Cell: "J6", Column: "R"}, {Cell: "J7", Column: "Y"}, {Cell: "J8", Column: "AF"},
			{Cell: "K6", Column: "S"}, {Cell: "K7", Column: "Z"}, {Cell: "K8", Column: "AG"},
		},
		InlineFormulas: []InlineFormula{
			{Cell: "L6", Formula: "K6+I6+G6"},
			{Cell: "L7", Formula: "K7+I7+G7"},
			{Cell: "L8", Formula: "K8+I8+G8"},
			{Cell: "M6", Formula: "E6+(E6*L6)"},
			{Cell: "M7", Formula: "E7+(E7*L7)"},
			{Cell: "M8", Formula: "E8+(E8*L8)"},
		},

		Columns: AssetColumns{Number: "A", Name: "B", Location: "G"},

		Format: FormatRules{
			Percent: []CellRange{
				{Ref: "G6:G8"},
				{Ref: "I6:I8"},
				{Ref: "K6:K8"},
				{Ref: "L6:L8"},
			},
			Currency: []CellRange{
				{Ref: "K3:K3"},
				{Ref: "E6:E8"},
				{Ref: "M6:M8"},
			},
			NoComma: []CellRange{
				{Ref: "G3:G3"},
				{Ref: "F6:F8"},
			},
			ZeroExclusions: []CellRange{
				{Ref: "B1:K1"},
				{Ref: "B4:K4"},
				{Ref: "L1:N4"},
			},
			CurrencySuffix: "ر.س.",
		},

		Render: RenderOptions{
			WindowRows:     8,
			WindowCols:     14, // A..N
			Scale:          2,
			Padding:        8,
			BaseFontSize:   13,
			HeaderFontSize: 14,
			BoldRows:       []int{1, 5},
		},

		Docx: DocxOptions{
			SheetMarker:    "مرفق 1: الوصف الجزئي وحسابات القيمة",
			PreviewMarker:  "مرفق 2: الصور الفوتوغرافية",
			GalleryCaption: "TAQEEM_PREVIEW_IMAGES",

			SheetImageWidthPx:    880,
			SheetImageHeightPx:   250,
			PreviewImageWidthPx:  210,
			PreviewImageHeightPx: 140,
			ImagesPerRow:         3,

			LeftIndentTwips:    1600,
			RightIndentTwips:   50,
			SpacingBeforeTwips: 550,
			TableIndentTwips:   2200,
		},
	}
}
