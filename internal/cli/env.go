package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of all environment variables that provide flag defaults.
const EnvPrefix = "NANDDECODE_"

// Environment holds flag defaults read from the environment, keyed by the variable name
// without the prefix.
type Environment map[string]string

// LoadEnvironment reads the NANDDECODE_ variables of the .env file at path and of the
// process environment. Process variables take precedence, a missing file is ignored.
func LoadEnvironment(path string) (Environment, error) {
	env := Environment{}

	if path != "" {
		values, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading environment file %s: %w", path, err)
		default:
			env.merge(values)
		}
	}

	process := make(map[string]string)
	for _, variable := range os.Environ() {
		key, value, _ := strings.Cut(variable, "=")
		process[key] = value
	}
	env.merge(process)

	return env, nil
}

func (e Environment) merge(values map[string]string) {
	for key, value := range values {
		if name, ok := strings.CutPrefix(key, EnvPrefix); ok {
			e[name] = value
		}
	}
}

func (e Environment) string(name, def string) string {
	if value, ok := e[name]; ok {
		return value
	}
	return def
}

func (e Environment) bool(name string, def bool) (bool, error) {
	value, ok := e[name]
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parsing %s%s: %w", EnvPrefix, name, err)
	}
	return b, nil
}

func (e Environment) int(name string, def int) (int, error) {
	value, ok := e[name]
	if !ok {
		return def, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s%s: %w", EnvPrefix, name, err)
	}
	return i, nil
}

func (e Environment) float(name string, def float64) (float64, error) {
	value, ok := e[name]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s%s: %w", EnvPrefix, name, err)
	}
	return f, nil
}
