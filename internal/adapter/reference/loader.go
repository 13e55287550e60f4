// Package reference loads the static menu document once at startup.
package reference

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Load returns the text of the document at path. PDFs are flattened to plain
// text page by page; every other file is read as-is.
func Load(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read reference %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	text, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
