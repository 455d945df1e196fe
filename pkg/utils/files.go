package utils

import (
	"os"
	"path/filepath"
)

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

// ReadSource reads a program file, resolving relPath first so errors name
// the absolute path.
func ReadSource(relPath string) (string, string, error) {
	fullPath, _, err := GetPathInfo(relPath)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fullPath, err
	}
	return string(data), fullPath, nil
}

// DefaultOutputPath swaps the extension of inPath for .bin.
func DefaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".bin"
	}
	return inPath[:len(inPath)-len(ext)] + ".bin"
}
