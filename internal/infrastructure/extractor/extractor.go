// Package extractor turns stored policy documents into plain text. Format is
// decided by file extension: plain text and markdown are read directly, PDF
// and XLSX go through dedicated readers.
package extractor

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/guardianai/guardianai/internal/core/domain"
)

// SupportedExtensions lists the file extensions the ingestion path accepts.
var SupportedExtensions = []string{".txt", ".md", ".markdown", ".pdf", ".xlsx"}

func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// FromBytes extracts plain text from a raw document by extension.
func FromBytes(filename string, raw []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown":
		return fromPlaintext(filename, raw)
	case ".pdf":
		return fromPDF(raw)
	case ".xlsx":
		return fromXLSX(raw)
	default:
		return "", domain.WrapError(domain.ErrIngestion, "extract text", fmt.Errorf("unsupported file type: %s", filename))
	}
}

func fromPlaintext(filename string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrIngestion, "extract text", fmt.Errorf("file %s is not valid UTF-8", filename))
	}
	return strings.TrimSpace(string(raw)), nil
}

func fromPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrIngestion, "extract text", fmt.Errorf("open pdf: %w", err))
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", domain.WrapError(domain.ErrIngestion, "extract text", fmt.Errorf("read pdf text: %w", err))
	}

	var b bytes.Buffer
	if _, err := b.ReadFrom(textReader); err != nil {
		return "", domain.WrapError(domain.ErrIngestion, "extract text", fmt.Errorf("read pdf text: %w", err))
	}
	return strings.TrimSpace(b.String()), nil
}

func fromXLSX(raw []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", domain.WrapError(domain.ErrIngestion, "extract text", fmt.Errorf("open xlsx: %w", err))
	}
	defer workbook.Close()

	var b strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrIngestion, "extract text", fmt.Errorf("read sheet %s: %w", sheet, err))
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String()), nil
}
