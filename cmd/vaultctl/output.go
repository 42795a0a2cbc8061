package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securestorage/internal/server/models"
)

type fileView struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

func viewOf(f *models.File) fileView {
	return fileView{FileID: f.FileID, Filename: f.Filename, ContentType: f.ContentType, SizeBytes: f.SizeBytes}
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePlain(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func formatFileLine(f fileView) string {
	return fmt.Sprintf("%s  %10d  %-24s  %s", f.FileID, f.SizeBytes, f.ContentType, f.Filename)
}
