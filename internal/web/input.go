package web

import (
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gradabroad/internal/core"
)

const xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// readDocument extracts the uploaded document from r. It accepts a
// multipart "file" field (.csv or .xlsx), a "csv" form field with pasted
// text, a raw xlsx body, or a raw text body. The body is capped at maxSize.
// It returns errNoInput when the request carries nothing.
func readDocument(w http.ResponseWriter, r *http.Request, maxSize int64) (core.Document, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return core.Document{}, "", err
		}
		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			doc, err := core.DecodeFile(header.Filename, file)
			return doc, header.Filename, err
		}
		return pastedDocument(r.FormValue("csv"))

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return core.Document{}, "", err
		}
		return pastedDocument(r.PostFormValue("csv"))

	case xlsxMediaType:
		doc, err := core.ReadSpreadsheet(r.Body)
		return doc, "", err

	default:
		text, err := core.ReadText(r.Body)
		if err != nil {
			return core.Document{}, "", err
		}
		return pastedDocument(text)
	}
}

func pastedDocument(text string) (core.Document, string, error) {
	if strings.TrimSpace(text) == "" {
		return core.Document{}, "", errNoInput
	}
	return core.ParseDocument(text), "", nil
}
