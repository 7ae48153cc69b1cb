package config

import (
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv copies PMK_* entries from the given .env files into the process
// environment. Variables that are already set win. Missing files are not an
// error. It returns the keys that were applied.
func LoadDotEnv(filenames ...string) ([]string, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	var existing []string
	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			existing = append(existing, name)
		}
	}
	if len(existing) == 0 {
		return nil, nil
	}

	values, err := godotenv.Read(existing...)
	if err != nil {
		return nil, err
	}

	var applied []string
	for key, value := range values {
		if !strings.HasPrefix(key, EnvPrefix+"_") {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return applied, err
		}
		applied = append(applied, key)
	}

	sort.Strings(applied)
	return applied, nil
}
