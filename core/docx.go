package core

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"valugen/config"
)

const (
	docXMLPath       = "word/document.xml"
	docRelsPath      = "word/_rels/document.xml.rels"
	contentTypesPath = "[Content_Types].xml"

	emuPerPixel = 9525

	emptyRelsXML = `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
)

var relIDPattern = regexp.MustCompile(`Id="rId(\d+)"`)

// DocxPackage is a docx archive held in memory. Part order is preserved so a
// rewritten file diffs cleanly against its template.
type DocxPackage struct {
	names []string
	parts map[string][]byte
}

// OpenDocxPackage reads a .docx file into memory.
func OpenDocxPackage(path string) (*DocxPackage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	return ReadDocxPackage(bytes.NewReader(data), int64(len(data)))
}

// ReadDocxPackage reads a docx archive from an in-memory reader.
func ReadDocxPackage(r io.ReaderAt, size int64) (*DocxPackage, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	pkg := &DocxPackage{parts: make(map[string][]byte, len(zr.File))}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", zf.Name, err)
		}
		pkg.names = append(pkg.names, zf.Name)
		pkg.parts[zf.Name] = data
	}
	return pkg, nil
}

// Part returns a named archive entry.
func (p *DocxPackage) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// SetPart replaces or appends an archive entry.
func (p *DocxPackage) SetPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
}

// Bytes serializes the package back into a zip archive.
func (p *DocxPackage) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("write part %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return nil, fmt.Errorf("write part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the package to disk.
func (p *DocxPackage) Save(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// elementSpan is the byte range of one XML element plus its concatenated
// character data, located without normalizing the surrounding markup.
type elementSpan struct {
	start int64
	end   int64
	text  string
}

// scanElements finds the spans of all top-level occurrences of an element by
// local name, using decoder offsets so the document bytes are never rewritten.
func scanElements(doc []byte, local string) ([]elementSpan, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var spans []elementSpan
	var cur *elementSpan
	var text strings.Builder
	depth := 0
	for {
		prev := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == local {
				if cur == nil {
					cur = &elementSpan{start: prev}
					text.Reset()
				}
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == local && cur != nil {
				depth--
				if depth == 0 {
					cur.end = dec.InputOffset()
					cur.text = text.String()
					spans = append(spans, *cur)
					cur = nil
				}
			}
		case xml.CharData:
			if cur != nil {
				text.Write(t)
			}
		}
	}
	return spans, nil
}

// ImageEmbedder splices rendered images into report documents: a full-width
// sheet snapshot after a marker paragraph, and a preview photo gallery table.
type ImageEmbedder struct {
	opts config.DocxOptions
}

func NewImageEmbedder(opts config.DocxOptions) *ImageEmbedder {
	return &ImageEmbedder{opts: opts}
}

// addImageRel stores the image bytes under word/media and registers a
// relationship for them, returning the new id and its numeric part.
func addImageRel(pkg *DocxPackage, prefix, ext string, data []byte) (string, int) {
	relsXML := emptyRelsXML
	if existing, ok := pkg.Part(docRelsPath); ok {
		relsXML = string(existing)
	}
	next := 1
	for _, m := range relIDPattern.FindAllStringSubmatch(relsXML, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= next {
			next = n + 1
		}
	}
	relID := fmt.Sprintf("rId%d", next)
	imageName := fmt.Sprintf("%s_%d%s", prefix, next, ext)

	relTag := fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`,
		relID, imageName)
	relsXML = strings.Replace(relsXML, "</Relationships>", relTag+"</Relationships>", 1)
	pkg.SetPart(docRelsPath, []byte(relsXML))
	pkg.SetPart("word/media/"+imageName, data)
	ensureImageContentType(pkg, strings.TrimPrefix(ext, "."))
	return relID, next
}

// ensureImageContentType registers a default content type for an image
// extension if the template does not declare one yet.
func ensureImageContentType(pkg *DocxPackage, ext string) {
	types, ok := pkg.Part(contentTypesPath)
	if !ok {
		return
	}
	if bytes.Contains(types, []byte(`Extension="`+ext+`"`)) {
		return
	}
	contentType := "image/" + ext
	if ext == "jpg" {
		contentType = "image/jpeg"
	}
	tag := fmt.Sprintf(`<Default Extension="%s" ContentType="%s"/>`, ext, contentType)
	updated := bytes.Replace(types, []byte("</Types>"), []byte(tag+"</Types>"), 1)
	pkg.SetPart(contentTypesPath, updated)
}

// insertAfterMarkerParagraph returns the byte offset just past the closing tag
// of the last paragraph whose text contains marker, or -1. A raw substring
// search backs up the structural scan for documents that confuse the decoder.
func insertAfterMarkerParagraph(doc []byte, marker string) int64 {
	if marker == "" {
		return -1
	}
	spans, err := scanElements(doc, "p")
	if err == nil {
		for i := len(spans) - 1; i >= 0; i-- {
			if strings.Contains(spans[i].text, marker) {
				return spans[i].end
			}
		}
	}
	idx := bytes.LastIndex(doc, []byte(marker))
	if idx == -1 {
		return -1
	}
	paraEnd := bytes.Index(doc[idx:], []byte("</w:p>"))
	if paraEnd == -1 {
		return -1
	}
	return int64(idx + paraEnd + len("</w:p>"))
}

// spliceDocument inserts fragment at offset, or before the body end (or at the
// very end) when offset is -1.
func spliceDocument(doc []byte, offset int64, fragment string) []byte {
	if offset < 0 {
		if idx := bytes.LastIndex(doc, []byte("</w:body>")); idx != -1 {
			offset = int64(idx)
		} else {
			offset = int64(len(doc))
		}
	}
	out := make([]byte, 0, len(doc)+len(fragment))
	out = append(out, doc[:offset]...)
	out = append(out, fragment...)
	out = append(out, doc[offset:]...)
	return out
}

// EmbedSheetImage adds one rendered sheet snapshot to the document, placed
// after the attachment marker paragraph when it exists.
func (e *ImageEmbedder) EmbedSheetImage(pkg *DocxPackage, pngData []byte) error {
	doc, ok := pkg.Part(docXMLPath)
	if !ok {
		return fmt.Errorf("docx has no %s", docXMLPath)
	}
	relID, docPrID := addImageRel(pkg, "sheet", ".png", pngData)

	cx := e.opts.SheetImageWidthPx * emuPerPixel
	cy := e.opts.SheetImageHeightPx * emuPerPixel
	fragment := fmt.Sprintf(`<w:p><w:pPr><w:ind w:left="%d" w:right="%d"/><w:spacing w:before="%d"/><w:jc w:val="right"/></w:pPr><w:r>%s</w:r></w:p>`,
		e.opts.LeftIndentTwips, e.opts.RightIndentTwips, e.opts.SpacingBeforeTwips,
		drawingXML(relID, docPrID, "SheetImage", cx, cy))

	offset := insertAfterMarkerParagraph(doc, e.opts.SheetMarker)
	pkg.SetPart(docXMLPath, spliceDocument(doc, offset, fragment))
	return nil
}

// PreviewImage is one photo headed for the gallery table.
type PreviewImage struct {
	Name string
	Data []byte
}

// AppendPreviewGallery replaces the document's preview gallery with a fresh
// table of the given images, laid out right to left in fixed-size rows.
// Running it again with new images never duplicates the table.
func (e *ImageEmbedder) AppendPreviewGallery(pkg *DocxPackage, images []PreviewImage) (int, error) {
	if len(images) == 0 {
		return 0, nil
	}
	doc, ok := pkg.Part(docXMLPath)
	if !ok {
		return 0, fmt.Errorf("docx has no %s", docXMLPath)
	}
	doc = e.removeExistingGallery(doc)

	perRow := e.opts.ImagesPerRow
	if perRow <= 0 {
		perRow = 3
	}
	cx := e.opts.PreviewImageWidthPx * emuPerPixel
	cy := e.opts.PreviewImageHeightPx * emuPerPixel

	type galleryEntry struct {
		relID   string
		docPrID int
	}
	entries := make([]galleryEntry, 0, len(images))
	for _, img := range images {
		ext := strings.ToLower(imageExt(img.Name))
		relID, docPrID := addImageRel(pkg, "preview", ext, img.Data)
		entries = append(entries, galleryEntry{relID: relID, docPrID: docPrID})
	}

	var rows strings.Builder
	for i := 0; i < len(entries); i += perRow {
		rows.WriteString("<w:tr>")
		end := i + perRow
		if end > len(entries) {
			end = len(entries)
		}
		for _, entry := range entries[i:end] {
			cell := fmt.Sprintf(`<w:p><w:pPr><w:jc w:val="right"/></w:pPr><w:r>%s</w:r></w:p>`,
				drawingXML(entry.relID, entry.docPrID, "PreviewImage", cx, cy))
			rows.WriteString(tableCell(cell))
		}
		for j := end; j < i+perRow; j++ {
			rows.WriteString(tableCell("<w:p/>"))
		}
		rows.WriteString("</w:tr>")
	}

	var grid strings.Builder
	for i := 0; i < perRow; i++ {
		grid.WriteString(`<w:gridCol w:w="0"/>`)
	}
	fragment := fmt.Sprintf(`<w:p><w:pPr><w:ind w:left="%d" w:right="%d"/><w:spacing w:before="250" w:after="150"/><w:jc w:val="right"/></w:pPr></w:p>`+
		`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:jc w:val="right"/><w:tblInd w:w="%d" w:type="dxa"/><w:tblCaption w:val="%s"/></w:tblPr><w:tblGrid>%s</w:tblGrid>%s</w:tbl>`,
		e.opts.TableIndentTwips, e.opts.RightIndentTwips,
		e.opts.TableIndentTwips, e.opts.GalleryCaption, grid.String(), rows.String())

	offset := insertAfterMarkerParagraph(doc, e.opts.PreviewMarker)
	if offset == -1 {
		offset = insertAfterSheetImage(doc)
	}
	pkg.SetPart(docXMLPath, spliceDocument(doc, offset, fragment))
	return len(images), nil
}

// removeExistingGallery strips a previously inserted gallery table, found by
// its caption, so repeated runs replace rather than accumulate.
func (e *ImageEmbedder) removeExistingGallery(doc []byte) []byte {
	caption := fmt.Sprintf(`w:tblCaption w:val="%s"`, e.opts.GalleryCaption)
	capIdx := bytes.Index(doc, []byte(caption))
	if capIdx == -1 {
		return doc
	}
	if spans, err := scanElements(doc, "tbl"); err == nil {
		for _, span := range spans {
			if span.start <= int64(capIdx) && int64(capIdx) < span.end {
				return append(doc[:span.start:span.start], doc[span.end:]...)
			}
		}
	}
	tblStart := bytes.LastIndex(doc[:capIdx], []byte("<w:tbl"))
	tblEnd := bytes.Index(doc[capIdx:], []byte("</w:tbl>"))
	if tblStart == -1 || tblEnd == -1 {
		return doc
	}
	end := capIdx + tblEnd + len("</w:tbl>")
	return append(doc[:tblStart:tblStart], doc[end:]...)
}

// insertAfterSheetImage places the gallery after an already embedded sheet
// snapshot when the preview marker is missing.
func insertAfterSheetImage(doc []byte) int64 {
	idx := bytes.LastIndex(doc, []byte(`name="SheetImage"`))
	if idx == -1 {
		return -1
	}
	paraEnd := bytes.Index(doc[idx:], []byte("</w:p>"))
	if paraEnd == -1 {
		return -1
	}
	return int64(idx + paraEnd + len("</w:p>"))
}

func imageExt(name string) string {
	if i := strings.LastIndex(name, "."); i != -1 {
		return name[i:]
	}
	return ".png"
}

func tableCell(content string) string {
	return `<w:tc><w:tcPr><w:tcW w:w="0" w:type="auto"/><w:vAlign w:val="center"/></w:tcPr>` + content + `</w:tc>`
}

// drawingXML builds the inline picture markup for one embedded image.
func drawingXML(relID string, docPrID int, name string, cx, cy int) string {
	return fmt.Sprintf(`<w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:docPr id="%d" name="%s"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="0" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, docPrID, name, name, relID, cx, cy)
}
