package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

//go:embed env.sample
var configFS embed.FS

// SetupConfigDirectory ensures configDir exists and writes the sample .env into it.
// It returns the path of the written file.
func SetupConfigDirectory(configDir string, backupExisting bool) (string, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	envPath := filepath.Join(configDir, ".env")
	if _, err := ExtractEmbeddedFile("env.sample", envPath, backupExisting); err != nil {
		return "", err
	}
	return envPath, nil
}

// ExtractEmbeddedFile writes an embedded file to targetPath. An existing file is left alone
// unless backupExisting is set, in which case it is copied to a dated .bak file first.
// It returns the backup path, if one was made.
func ExtractEmbeddedFile(embeddedPath, targetPath string, backupExisting bool) (string, error) {
	backupPath := ""
	if _, err := os.Stat(targetPath); err == nil {
		if !backupExisting {
			return "", nil
		}

		existingData, err := os.ReadFile(targetPath)
		if err != nil {
			return "", fmt.Errorf("failed to read existing file for backup: %w", err)
		}

		backupPath = fmt.Sprintf("%s.%s.bak", targetPath, time.Now().Format("2006-01-02"))
		if err := os.WriteFile(backupPath, existingData, 0644); err != nil {
			return "", fmt.Errorf("failed to write backup file: %w", err)
		}
	}

	fileData, err := configFS.ReadFile(embeddedPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(targetPath, fileData, 0644); err != nil {
		return "", err
	}

	return backupPath, nil
}
