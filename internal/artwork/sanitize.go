package artwork

import (
	"path/filepath"
	"regexp"
	"strings"
)

// illegalChars are characters not allowed in filenames on common filesystems.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00]`)

var multiDot = regexp.MustCompile(`\.{2,}`)

// sanitizeFilename makes a catalog id safe to use as a file name component.
func sanitizeFilename(name string) string {
	name = illegalChars.ReplaceAllString(name, "_")
	name = multiDot.ReplaceAllString(name, ".")
	return strings.Trim(name, " .")
}

// validatePath returns ErrPathTraversal if path is not inside root.
func validatePath(path, root string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(root)

	prefix := cleanRoot
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if cleanPath == cleanRoot || !strings.HasPrefix(cleanPath, prefix) {
		return ErrPathTraversal
	}
	return nil
}
