package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_detectContentType(t *testing.T) {
	var (
		pdf  = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
		png  = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")
		jpeg = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00")
		zip  = []byte("PK\x03\x04\x14\x00\x06\x00\x08\x00")
		ole  = append(append([]byte{}, oleHeader...), make([]byte, 24)...)
		exe  = []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff")
	)

	tests := []struct {
		name     string
		head     []byte
		filename string
		wantType string
		wantExt  string
		wantOk   bool
	}{
		{name: "pdf", head: pdf, filename: "contract.PDF", wantType: "application/pdf", wantExt: ".pdf", wantOk: true},
		{name: "png", head: png, filename: "id.png", wantType: "image/png", wantExt: ".png", wantOk: true},
		{name: "jpeg", head: jpeg, filename: "photo.jpeg", wantType: "image/jpeg", wantExt: ".jpeg", wantOk: true},
		{name: "jpg", head: jpeg, filename: "photo.jpg", wantType: "image/jpeg", wantExt: ".jpg", wantOk: true},
		{name: "text", head: []byte("plain notes"), filename: "notes.txt", wantType: "text/plain; charset=utf-8", wantExt: ".txt", wantOk: true},
		{name: "csv", head: []byte("a,b\n1,2\n"), filename: "data.csv", wantType: "text/plain; charset=utf-8", wantExt: ".csv", wantOk: true},
		{name: "text without extension", head: []byte("plain notes"), filename: "README", wantType: "text/plain; charset=utf-8", wantExt: ".txt", wantOk: true},
		{name: "content wins over extension", head: pdf, filename: "cv.png", wantType: "application/pdf", wantExt: ".pdf", wantOk: true},
		{
			name: "docx", head: zip, filename: "letter.docx", wantOk: true, wantExt: ".docx",
			wantType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		{
			name: "xlsx", head: zip, filename: "grades.XLSX", wantOk: true, wantExt: ".xlsx",
			wantType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		},
		{name: "doc", head: ole, filename: "old.doc", wantType: "application/msword", wantExt: ".doc", wantOk: true},
		{name: "xls", head: ole, filename: "old.xls", wantType: "application/vnd.ms-excel", wantExt: ".xls", wantOk: true},
		{name: "plain zip", head: zip, filename: "archive.zip"},
		{name: "zip posing as pdf", head: zip, filename: "archive.pdf"},
		{name: "ole without office extension", head: ole, filename: "thing.msi"},
		{name: "executable", head: exe, filename: "setup.exe"},
		{name: "executable posing as pdf", head: exe, filename: "setup.pdf"},
		{name: "html", head: []byte("<html><body>hi</body></html>"), filename: "page.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotExt, ok := detectContentType(tt.head, tt.filename)
			assert.Equal(t, tt.wantOk, ok)
			if !tt.wantOk {
				return
			}
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantExt, gotExt)
		})
	}
}
