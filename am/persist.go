package am

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

const fileHeader = "# stubgen configuration\n# Environment variables STUBGEN_<KEY> override these values.\n\n"

// backupSuffixes lists rotating backups, newest first.
var backupSuffixes = []string{".back1", ".back2", ".back3"}

// createBackup rotates existing backups and copies configPath to the newest
// one. The oldest backup is dropped.
func createBackup(configPath string) error {
	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	oldest := configPath + backupSuffixes[len(backupSuffixes)-1]
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		logger.Warnw("Failed to delete old config backup",
			logger.FieldFile, oldest,
			logger.FieldError, err)
	}
	for i := len(backupSuffixes) - 1; i > 0; i-- {
		from, to := configPath+backupSuffixes[i-1], configPath+backupSuffixes[i]
		if err := os.Rename(from, to); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to rotate %s", from)
		}
	}

	newest := configPath + backupSuffixes[0]
	if err := os.WriteFile(newest, content, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", newest)
	}
	return nil
}

// Marshal renders config as TOML
func Marshal(config *Config) ([]byte, error) {
	data, err := toml.Marshal(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return append([]byte(fileHeader), data...), nil
}

// WriteConfig writes config to configPath, backing up any existing file
func WriteConfig(configPath string, config *Config) error {
	data, err := Marshal(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", configPath)
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}
