package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads every listed env file that exists. Variables already in the environment
// are kept, so earlier files win over later ones.
func LoadDotEnv(paths ...string) error {
	present := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		present = append(present, path)
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}
