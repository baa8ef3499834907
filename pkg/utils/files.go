package utils

import "path/filepath"

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ROMTitle is the file name of a ROM without its directory, used as the
// window caption.
func ROMTitle(path string) string {
	return filepath.Base(path)
}

// OutputPath swaps the extension of inPath for ext, or appends ext when
// inPath has none.
func OutputPath(inPath, ext string) string {
	old := filepath.Ext(inPath)
	return inPath[:len(inPath)-len(old)] + ext
}
