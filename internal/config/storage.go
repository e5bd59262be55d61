package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultContainerName is used when neither env nor file names a container.
	DefaultContainerName = "lifetrack-data"

	// DevelopmentStorage marks a connection string that was never configured.
	DevelopmentStorage = "UseDevelopmentStorage=true"

	SourceEnv  = "env"
	SourceFile = "file"

	maxConfigFileSize = 1024 * 1024
)

var (
	ErrStorageNotConfigured  = errors.New("storage connection string not configured")
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
)

var placeholderPattern = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// Connection returns the connection string with %NAME% placeholders expanded
// against the environment.
func (s StorageConfig) Connection() (string, error) {
	return s.resolve(os.LookupEnv)
}

func (s StorageConfig) resolve(lookup func(string) (string, bool)) (string, error) {
	raw := strings.TrimSpace(s.ConnectionString)
	if raw == "" {
		return "", ErrStorageNotConfigured
	}
	resolved, err := ResolvePlaceholders(raw, lookup)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(strings.TrimSpace(resolved), DevelopmentStorage) {
		return "", ErrStorageNotConfigured
	}
	return resolved, nil
}

// ResolvePlaceholders replaces every %NAME% with the value of NAME.
// A name that is unset or empty is an error.
func ResolvePlaceholders(value string, lookup func(string) (string, bool)) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := lookup(name)
		if !ok || v == "" {
			missing = append(missing, name)
			return match
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, strings.Join(missing, ", "))
	}
	return out, nil
}

// loadFile reads an optional YAML config file. A missing file yields nil.
func loadFile(path string) (*koanf.Koanf, error) {
	if path == "" {
		return nil, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config file %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return k, nil
}

func (s *StorageConfig) applyFile(k *koanf.Koanf) {
	if k == nil {
		return
	}
	if v := k.String("storage.connection_string"); v != "" {
		s.ConnectionString = v
		s.Source = SourceFile
	}
	if v := k.String("storage.container_name"); v != "" {
		s.ContainerName = v
	}
	if k.Exists("storage.create_container") {
		s.CreateContainer = k.Bool("storage.create_container")
	}
}
