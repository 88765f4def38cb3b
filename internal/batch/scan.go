package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// sourceExtensions are the image types the packer accepts.
var sourceExtensions = map[string]bool{
	".cue": true,
	".bin": true,
	".img": true,
	".iso": true,
	".m3u": true,
	".pbp": true,
}

// Scan walks root and returns the relative paths of convertible images,
// sorted. A .bin or .img next to a .cue of the same name is left out: the
// .cue sheet references it. When recursive is false only root itself is read.
func Scan(root string, recursive bool) ([]string, error) {
	var found []string
	cues := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !sourceExtensions[ext] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if ext == ".cue" {
			cues[stem(rel)] = true
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	files := found[:0]
	for _, rel := range found {
		ext := strings.ToLower(filepath.Ext(rel))
		if (ext == ".bin" || ext == ".img") && cues[stem(rel)] {
			continue
		}
		files = append(files, rel)
	}
	slices.Sort(files)
	return files, nil
}

func stem(rel string) string {
	return strings.ToLower(strings.TrimSuffix(rel, filepath.Ext(rel)))
}
