// SPDX-License-Identifier: MPL-2.0

package envutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile loads a dotenv file and merges its contents into the provided env
// map. Relative paths are resolved against basePath (the runner's working
// directory); an empty basePath means the current working directory. Files
// suffixed with '?' are optional and missing optional files are not an error.
// Later calls override earlier values for the same keys.
func LoadFile(env map[string]string, path, basePath string) error {
	optional := strings.HasSuffix(path, "?")
	if optional {
		path = strings.TrimSuffix(path, "?")
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(basePath, filepath.FromSlash(path))
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read env file '%s': %w", path, err)
	}

	return ParseFile(env, content, path)
}

// ParseFile parses dotenv format content and merges it into the env map.
// Supported format:
//   - Lines starting with # are comments
//   - Empty lines are ignored
//   - KEY=value (unquoted, inline " #" comments stripped)
//   - KEY="value" (double-quoted, escapes: \n, \r, \t, \\, \", \$)
//   - KEY='value' (single-quoted, literal)
//   - export KEY=value (export prefix ignored)
//   - KEY= (empty value)
//
// The filename parameter is used for error messages only.
func ParseFile(env map[string]string, content []byte, filename string) error {
	for i, line := range strings.Split(string(content), "\n") {
		lineNum := i + 1

		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: invalid format (missing '=')", filename, lineNum)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s:%d: empty variable name", filename, lineNum)
		}

		parsed, err := parseValue(value)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filename, lineNum, err)
		}

		env[key] = parsed
	}

	return nil
}

// parseValue parses a dotenv value, handling quoting and escape sequences.
func parseValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	switch value[0] {
	case '"':
		if len(value) < 2 || value[len(value)-1] != '"' {
			return "", fmt.Errorf("unterminated double quote")
		}
		return unescapeDoubleQuoted(value[1 : len(value)-1]), nil
	case '\'':
		if len(value) < 2 || value[len(value)-1] != '\'' {
			return "", fmt.Errorf("unterminated single quote")
		}
		return value[1 : len(value)-1], nil
	}

	// Unquoted: strip inline comments.
	if idx := strings.Index(value, " #"); idx != -1 {
		value = strings.TrimSpace(value[:idx])
	}

	return value, nil
}

// unescapeDoubleQuoted processes escape sequences in a double-quoted value.
// Unknown escapes keep both characters.
func unescapeDoubleQuoted(value string) string {
	var result strings.Builder
	result.Grow(len(value))

	for i := 0; i < len(value); {
		if value[i] == '\\' && i+1 < len(value) {
			switch next := value[i+1]; next {
			case 'n':
				result.WriteByte('\n')
			case 'r':
				result.WriteByte('\r')
			case 't':
				result.WriteByte('\t')
			case '\\', '"', '$':
				result.WriteByte(next)
			default:
				result.WriteByte('\\')
				result.WriteByte(next)
			}
			i += 2
			continue
		}
		result.WriteByte(value[i])
		i++
	}

	return result.String()
}
