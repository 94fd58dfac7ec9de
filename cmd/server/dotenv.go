package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// dotenvPathEnv overrides the location of the .env file.
const dotenvPathEnv = "LOYALTY_DOTENV_PATH"

// loadDotenv copies variables from the .env file into the environment.
// Variables already set in the environment are left alone. A missing default
// .env is normal; a missing explicit one is worth a warning.
func loadDotenv(logger *slog.Logger) {
	path := os.Getenv(dotenvPathEnv)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no .env file found", "path", path)
			return
		}
		logger.Warn("failed to load .env", "path", path, "error", err)
		return
	}
	logger.Info(".env loaded", "path", path)
}
