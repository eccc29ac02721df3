package config

import (
	"fmt"
	"regexp"
)

var (
	cellRefPattern   = regexp.MustCompile(`^[A-Z]+[0-9]+$`)
	rangeRefPattern  = regexp.MustCompile(`^[A-Z]+[0-9]+:[A-Z]+[0-9]+$`)
	columnRefPattern = regexp.MustCompile(`^[A-Z]+$`)
)

// Validator validates template profiles before the pipeline runs with them.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateProfile validates the TemplateProfile.
func (v *Validator) ValidateProfile(p *TemplateProfile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.CalcTemplate == "" {
		return fmt.Errorf("profile calc template path is required")
	}
	if p.ReportTemplate == "" {
		return fmt.Errorf("profile report template path is required")
	}
	if len(p.MainFolders) == 0 {
		return fmt.Errorf("profile must declare at least one main folder")
	}
	if p.LocationFolderIndex < 0 || p.LocationFolderIndex >= len(p.MainFolders) {
		return fmt.Errorf("locationFolderIndex %d out of range", p.LocationFolderIndex)
	}
	if p.CalcFolderIndex < 0 || p.CalcFolderIndex >= len(p.MainFolders) {
		return fmt.Errorf("calcFolderIndex %d out of range", p.CalcFolderIndex)
	}
	if p.TemplateSheet == "" || p.DataSheet == "" {
		return fmt.Errorf("templateSheet and dataSheet are required")
	}

	for i, ref := range p.DataRefs {
		if !cellRefPattern.MatchString(ref.Cell) {
			return fmt.Errorf("dataRefs[%d]: invalid cell %q", i, ref.Cell)
		}
		if !columnRefPattern.MatchString(ref.Column) {
			return fmt.Errorf("dataRefs[%d]: invalid column %q", i, ref.Column)
		}
	}
	for i, f := range p.InlineFormulas {
		if !cellRefPattern.MatchString(f.Cell) {
			return fmt.Errorf("inlineFormulas[%d]: invalid cell %q", i, f.Cell)
		}
		if f.Formula == "" {
			return fmt.Errorf("inlineFormulas[%d]: empty formula", i)
		}
	}

	if err := v.validateRules(&p.Format); err != nil {
		return err
	}
	if err := v.validateRender(&p.Render); err != nil {
		return err
	}
	return v.validateDocx(&p.Docx)
}

func (v *Validator) validateRules(rules *FormatRules) error {
	check := func(name string, ranges []CellRange) error {
		for i, r := range ranges {
			if !rangeRefPattern.MatchString(r.Ref) {
				return fmt.Errorf("format.%s[%d]: invalid range %q", name, i, r.Ref)
			}
		}
		return nil
	}
	if err := check("percent", rules.Percent); err != nil {
		return err
	}
	if err := check("currency", rules.Currency); err != nil {
		return err
	}
	if err := check("noComma", rules.NoComma); err != nil {
		return err
	}
	if err := check("zeroExclusions", rules.ZeroExclusions); err != nil {
		return err
	}
	if len(rules.Currency) > 0 && rules.CurrencySuffix == "" {
		return fmt.Errorf("format.currencySuffix is required when currency ranges are set")
	}
	return nil
}

func (v *Validator) validateRender(r *RenderOptions) error {
	if r.WindowRows <= 0 || r.WindowCols <= 0 {
		return fmt.Errorf("render window must be positive, got %dx%d", r.WindowRows, r.WindowCols)
	}
	if r.Scale <= 0 {
		return fmt.Errorf("render scale must be positive, got %d", r.Scale)
	}
	if r.BaseFontSize <= 0 || r.HeaderFontSize <= 0 {
		return fmt.Errorf("render font sizes must be positive")
	}
	return nil
}

func (v *Validator) validateDocx(d *DocxOptions) error {
	if d.SheetMarker == "" {
		return fmt.Errorf("docx.sheetMarker is required")
	}
	if d.GalleryCaption == "" {
		return fmt.Errorf("docx.galleryCaption is required")
	}
	if d.ImagesPerRow <= 0 {
		return fmt.Errorf("docx.imagesPerRow must be positive, got %d", d.ImagesPerRow)
	}
	return nil
}
