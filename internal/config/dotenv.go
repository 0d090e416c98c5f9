package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"happi-app-go/pkg/logger"
)

const dotenvFilename = ".env"

// loadDotEnv applies the nearest .env.<ENV> before the nearest .env, so
// per-environment values win over shared ones. Variables already set in
// the process are never overridden.
func loadDotEnv(log logger.Logger) error {
	var names []string
	if env := os.Getenv("ENV"); env != "" {
		names = append(names, dotenvFilename+"."+env)
	}
	names = append(names, dotenvFilename)

	for _, name := range names {
		path, err := findUp(name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}

		loaded, skipped, err := applyDotEnv(path)
		if err != nil {
			return err
		}
		log.Info("dotenv: loaded variables", "path", path, "count", loaded, "skipped", skipped)
	}
	return nil
}

// findUp looks for name in the working directory and each of its parents.
func findUp(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// applyDotEnv sets every variable from path that is not already present in
// the process environment.
func applyDotEnv(path string) (loaded, skipped int, err error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return 0, 0, err
	}
	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			skipped++
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return loaded, skipped, err
		}
		loaded++
	}
	return loaded, skipped, nil
}
