// Package pdftext turns a timetable PDF into pages of raw text lines.
// It is the black-box acquisition collaborator in front of the extraction
// core: one string per visually distinct line, in reading order, with no
// further structure guaranteed.
package pdftext

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"golang.org/x/text/unicode/norm"

	appLog "ttcal/internal/log"
)

var errEncrypted = errors.New("pdf is password protected")

// ExtractPages reads the PDF at path and returns its text content as one
// slice of lines per page. Lines are NFC-normalized (the text layer of
// table renderers likes decomposed umlauts) and blank lines are dropped.
func ExtractPages(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := model.NewPdfReaderLazy(f)
	if err != nil {
		return nil, fmt.Errorf("read pdf %q: %w", path, err)
	}

	encrypted, err := reader.IsEncrypted()
	if err != nil {
		return nil, err
	}
	if encrypted {
		// Many institutional PDFs are "encrypted" with an empty owner
		// password; try that before giving up.
		ok, err := reader.Decrypt([]byte(""))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q", errEncrypted, path)
		}
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, err
	}

	pages := make([][]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, SplitLines(text))
	}

	appLog.Info("pdf text extracted", "path", path, "pages", len(pages))
	return pages, nil
}

// SplitLines breaks extracted page text into normalized, non-blank lines.
func SplitLines(text string) []string {
	raw := strings.Split(norm.NFC.String(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, " \t\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
