package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"kpbu-assistant/internal/app"
)

type document struct {
	path     string
	fileType string
}

// collectDocuments expands paths into supported documents, sorted by path.
// Explicitly named files of an unsupported type are an error; inside
// directories they are skipped.
func collectDocuments(paths []string) ([]document, error) {
	var docs []document
	seen := map[string]bool{}
	add := func(path, fileType string) {
		if !seen[path] {
			seen[path] = true
			docs = append(docs, document{path: path, fileType: fileType})
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			fileType := app.FileTypeOf(root)
			if fileType == "" {
				return nil, fmt.Errorf("%s: unsupported file type", root)
			}
			add(filepath.Clean(root), fileType)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if fileType := app.FileTypeOf(path); fileType != "" {
				add(path, fileType)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	slices.SortFunc(docs, func(a, b document) int {
		switch {
		case a.path < b.path:
			return -1
		case a.path > b.path:
			return 1
		}
		return 0
	})
	return docs, nil
}

func (d document) load(projectID string) (app.IngestInput, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return app.IngestInput{}, err
	}
	defer f.Close()

	content, err := app.ExtractContent(d.fileType, f)
	if err != nil {
		return app.IngestInput{}, err
	}
	return app.IngestInput{
		ProjectID:    projectID,
		DocumentName: filepath.Base(d.path),
		FileType:     d.fileType,
		Content:      content,
	}, nil
}
