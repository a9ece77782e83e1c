package configuration

import (
	"bufio"
	"os"
	"strings"
)

// LoadEnvFromFile reads KEY=VALUE lines from the given files into the
// process environment. Variables already set in the environment win, so
// a deployment can override anything a local env file provides. Missing
// files are skipped silently.
func LoadEnvFromFile(paths ...string) {
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			key, value, ok := parseEnvLine(scanner.Text())
			if !ok {
				continue
			}
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, value)
			}
		}
		_ = file.Close()
	}
}

// parseEnvLine accepts KEY=VALUE with optional single or double quotes
// around the value. Blank lines and # comments report ok=false.
func parseEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	value = strings.Trim(strings.TrimSpace(value), `"'`)
	return key, value, true
}
