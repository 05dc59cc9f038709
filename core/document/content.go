package document

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
)

// sniffLen is how much of a file is read to detect its content type.
const sniffLen = 512

var (
	oleHeader = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

	// allowed content types by extension
	officeTypes = map[string]string{
		".doc":  "application/msword",
		".xls":  "application/vnd.ms-excel",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
	sniffedTypes = map[string][]string{
		"application/pdf": {".pdf"},
		"image/png":       {".png"},
		"image/jpeg":      {".jpg", ".jpeg"},
		"text/plain":      {".txt", ".csv", ""},
	}
)

// detectContentType sniffs head and returns the content type and extension to store the file with.
// Office documents are recognised by their container signature and their extension.
func detectContentType(head []byte, filename string) (string, string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	sniffed := http.DetectContentType(head)
	base := strings.TrimSpace(strings.SplitN(sniffed, ";", 2)[0])

	switch {
	case base == "application/zip" && (ext == ".docx" || ext == ".xlsx"):
		return officeTypes[ext], ext, true
	case bytes.HasPrefix(head, oleHeader) && (ext == ".doc" || ext == ".xls"):
		return officeTypes[ext], ext, true
	}

	exts, ok := sniffedTypes[base]
	if !ok {
		return "", "", false
	}
	for _, allowed := range exts {
		if ext == allowed {
			if ext == "" {
				ext = ".txt"
			}
			return sniffed, ext, true
		}
	}
	return sniffed, exts[0], true
}
