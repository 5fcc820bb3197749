// ABOUTME: Environment variable expansion in config string fields
// ABOUTME: Replaces ${VAR} patterns with os.Getenv values; unset vars become empty

package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.LogLevel = expandEnv(s.LogLevel)
	s.LogFile = expandEnv(s.LogFile)
	s.ResponseMode = expandEnv(s.ResponseMode)
}

// expandEnv replaces ${VAR} with os.Getenv(VAR).
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(m)[1])
	})
}
