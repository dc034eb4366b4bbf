package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// OpenDocument text lives in content.xml under text:p, text:span and text:h
// elements.
var odfTextTags = []*regexp.Regexp{
	regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`),
	regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`),
	regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`),
}

func extractODP(content []byte) (string, error) {
	return extractOpenDocument(content, "ODP")
}

func extractODS(content []byte) (string, error) {
	return extractOpenDocument(content, "ODS")
}

func extractOpenDocument(content []byte, format string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract %s: not a zip: %w", format, err)
	}
	contentXML, err := readZipEntry(zr, "content.xml")
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", format, err)
	}
	if contentXML == nil {
		return "", fmt.Errorf("extract %s: content.xml not found", format)
	}
	s := string(contentXML)
	var b strings.Builder
	for _, re := range odfTextTags {
		joinMatches(&b, re.FindAllStringSubmatch(s, -1))
	}
	return strings.TrimSpace(b.String()), nil
}
