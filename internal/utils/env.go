package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnvironment loads variables from .env files in the working directory and next to the
// executable. It runs before the logger is configured, so it returns the files it loaded.
// Variables already present in the environment are never overridden.
func LoadEnvironment() []string {
	var loaded []string

	if err := godotenv.Load(); err == nil {
		loaded = append(loaded, ".env")
	}

	execPath, err := os.Executable()
	if err != nil {
		return loaded
	}

	envPath := filepath.Join(filepath.Dir(execPath), ".env")
	if abs, err := filepath.Abs(".env"); err == nil && abs == envPath {
		return loaded
	}
	if err := godotenv.Load(envPath); err == nil {
		loaded = append(loaded, envPath)
	}

	return loaded
}
