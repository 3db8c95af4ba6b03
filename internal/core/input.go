package core

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedFileType is returned for uploads that are neither CSV nor xlsx.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ReadText reads an uploaded text file fully. A leading UTF-8 BOM is
// dropped and invalid UTF-8 sequences become U+FFFD.
func ReadText(r io.Reader) (string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}

// ReadSpreadsheet reads the first sheet of an xlsx workbook as a Document.
func ReadSpreadsheet(r io.Reader) (Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Document{}, fmt.Errorf("read spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return NewDocument(nil), nil
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return Document{}, fmt.Errorf("read spreadsheet %q: %w", sheets[0], err)
	}
	return NewDocument(records), nil
}

// DecodeFile picks a reader by file extension: .xlsx goes through
// ReadSpreadsheet, .csv, .txt and extensionless names through ReadText and
// ParseDocument.
func DecodeFile(fileName string, r io.Reader) (Document, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".xlsx":
		return ReadSpreadsheet(r)
	case ".csv", ".txt", "":
		text, err := ReadText(r)
		if err != nil {
			return Document{}, err
		}
		return ParseDocument(text), nil
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
}
