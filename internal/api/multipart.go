package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// File is an attachment sent as a multipart form part.
type File struct {
	Name    string
	Content io.Reader
}

// FormField is a plain multipart form value. Fields are written in order.
type FormField struct {
	Name  string
	Value string
}

type multipartBody struct {
	buf         *bytes.Buffer
	contentType string
}

// EncodeForm writes fields followed by one part per file under fileField.
func EncodeForm(fields []FormField, fileField string, files []File) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", f.Name, err)
		}
	}
	for _, file := range files {
		part, err := w.CreateFormFile(fileField, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %s: %w", file.Name, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func newMultipartBody(fields []FormField, fileField string, files []File) (*multipartBody, error) {
	buf, ct, err := EncodeForm(fields, fileField, files)
	if err != nil {
		return nil, err
	}
	return &multipartBody{buf: buf, contentType: ct}, nil
}
