package util

import (
	"errors"
	"strings"
)

// ParseCliVars parses KEY=VALUE arguments. The value may contain "=".
func ParseCliVars(args []string) (map[string]string, error) {
	data := map[string]string{}

	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return data, errors.New("arguments passed to --var must be of the form: KEY=VALUE")
		}
		if _, ok := data[key]; ok {
			return data, errors.New("can't use the same KEY for multiple --var arguments: " + key)
		}
		data[key] = val
	}
	return data, nil
}
