package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names recognised by onboard.
const (
	EnvAPIURL      = "POSTNOW_API_URL"
	EnvAccessToken = "POSTNOW_ACCESS_TOKEN"
)

// Env holds values taken from the process environment.
type Env struct {
	APIURL      string
	AccessToken string
}

// LoadEnv loads an optional dotenv file into the process environment and reads
// the onboard variables. Variables already set in the environment win.
func LoadEnv(dotenvPath string) (Env, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}
	return Env{
		APIURL:      strings.TrimSpace(os.Getenv(EnvAPIURL)),
		AccessToken: strings.TrimSpace(os.Getenv(EnvAccessToken)),
	}, nil
}
