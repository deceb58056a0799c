package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FileSystem abstracts file access so tests can run without touching disk.
type FileSystem interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	ReadEnv(path string) (map[string]string, error)
}

// OSFileSystem implements FileSystem using the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile creates parent directories as needed and replaces any existing file.
func (OSFileSystem) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadEnv parses a dotenv file without touching the process environment.
func (OSFileSystem) ReadEnv(path string) (map[string]string, error) {
	return godotenv.Read(path)
}
