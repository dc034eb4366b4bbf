// Package e2e exercises the whole chat flow; this file builds minimal binary
// files for the supported document formats.
package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildFile returns minimal file bytes of the given extension carrying text.
// Plain types return the raw text; binary types return a valid container.
func BuildFile(ext, text string) ([]byte, error) {
	switch ext {
	case ".txt", ".md", ".csv", ".json", ".jsonl":
		return []byte(text), nil
	case ".docx":
		return buildZipFile(map[string]string{
			"word/document.xml": "<w:document><w:body><w:p><w:t>" + text + "</w:t></w:p></w:body></w:document>",
		})
	case ".pptx":
		return buildZipFile(map[string]string{
			"ppt/slides/slide1.xml": "<p:sld><a:t>" + text + "</a:t></p:sld>",
		})
	case ".odp", ".ods":
		return buildZipFile(map[string]string{
			"content.xml": "<office:document-content><text:p>" + text + "</text:p></office:document-content>",
		})
	case ".xlsx":
		return buildXlsx(text)
	default:
		return nil, fmt.Errorf("no fixture for %s", ext)
	}
}

func buildZipFile(files map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write([]byte(content)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildXlsx(text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", text); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
