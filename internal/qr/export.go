package qr

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"

	"github.com/julianstephens/leverage-journal/internal/constants"
)

// exportNames are the file names print layouts reference for each chapter
var exportNames = map[int]string{
	1: "qr-chapter1-goals.png",
	2: "qr-chapter2-daily.png",
	3: "qr-chapter3-dashboard.png",
	4: "qr-chapter4-stats.png",
	5: "qr-chapter5-dashboard.png",
}

// ExportFileName is the PNG file name a chapter's code is exported as
func ExportFileName(chapter int) string {
	if name, ok := exportNames[chapter]; ok {
		return name
	}
	return fmt.Sprintf("qr-chapter%d.png", chapter)
}

// Export writes every chapter code under baseURL into dir as a 300×300 PNG
// and returns the paths written. dir must exist.
func Export(dir, baseURL string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("export directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("export path %s is not a directory", dir)
	}

	links := ChapterLinks(baseURL)
	paths := make([]string, 0, len(links))
	for _, l := range links {
		path := filepath.Join(dir, ExportFileName(l.Chapter))
		if err := qrcode.WriteFile(l.URL, qrcode.High, constants.QRExportSize, path); err != nil {
			return paths, fmt.Errorf("failed to export %s: %w", l.ID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
