package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Form is a multipart/form-data body. Fields keep their insertion order.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct{ name, value string }

type formFile struct{ name, path string }

// NewForm returns an empty form.
func NewForm() *Form { return &Form{} }

// Set appends a text field.
func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File appends a file field read from path when the form is sent.
func (f *Form) File(name, path string) *Form {
	f.files = append(f.files, formFile{name: name, path: path})
	return f
}

// Has reports whether a text or file field with the given name was added.
func (f *Form) Has(name string) bool {
	for _, fl := range f.fields {
		if fl.name == name {
			return true
		}
	}
	for _, fl := range f.files {
		if fl.name == name {
			return true
		}
	}
	return false
}

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fl := range f.fields {
		if err := w.WriteField(fl.name, fl.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", fl.name, err)
		}
	}
	for _, fl := range f.files {
		if err := writeFile(w, fl); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, fl formFile) error {
	mt, err := mimetype.DetectFile(fl.path)
	if err != nil {
		return fmt.Errorf("detect %s: %w", fl.path, err)
	}
	src, err := os.Open(fl.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", fl.path, err)
	}
	defer src.Close() //nolint:errcheck

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fl.name, filepath.Base(fl.path)))
	h.Set("Content-Type", mt.String())
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", fl.name, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", fl.path, err)
	}
	return nil
}
