package profile

import (
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultDotEnvFiles are read by LoadDotEnv when no path is given.
var DefaultDotEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv loads EMOCTX_* variables from dotenv files. Missing files are
// skipped and variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = DefaultDotEnvFiles
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "failed to load %s", p)
		}
		slog.Debug("loaded env file", "path", p)
	}
	return nil
}
