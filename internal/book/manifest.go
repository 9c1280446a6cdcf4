package book

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestFile is the on-disk shape of a chapter table
type manifestFile struct {
	Chapters []Source `yaml:"chapters"`
}

// LoadManifest reads a chapter table from YAML and validates it
func LoadManifest(r io.Reader) ([]Source, error) {
	var mf manifestFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil {
		if errors.Is(err, io.EOF) {
			return []Source{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := ValidateManifest(mf.Chapters); err != nil {
		return nil, err
	}
	if mf.Chapters == nil {
		return []Source{}, nil
	}
	return mf.Chapters, nil
}

// LoadManifestFile reads a chapter table from a YAML file
func LoadManifestFile(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening manifest %s: %w", path, err)
	}
	defer f.Close()

	sources, err := LoadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest %s: %w", path, err)
	}
	return sources, nil
}

// ValidateManifest checks titles, files and route paths. Paths must start
// with a slash, must not end with one, and must be unique.
func ValidateManifest(sources []Source) error {
	seen := make(map[string]int, len(sources))
	for i, s := range sources {
		row := i + 1
		switch {
		case strings.TrimSpace(s.Title) == "":
			return fmt.Errorf("%w: chapter %d has no title", ErrInvalidManifest, row)
		case s.File == "":
			return fmt.Errorf("%w: chapter %d (%s) has no file", ErrInvalidManifest, row, s.Title)
		case !strings.HasPrefix(s.Path, "/") || len(s.Path) < 2:
			return fmt.Errorf("%w: chapter %d (%s) path %q must start with a slash", ErrInvalidManifest, row, s.Title, s.Path)
		case strings.HasSuffix(s.Path, "/"):
			return fmt.Errorf("%w: chapter %d (%s) path %q has a trailing slash", ErrInvalidManifest, row, s.Title, s.Path)
		}
		if prev, ok := seen[s.Path]; ok {
			return fmt.Errorf("%w: path %s used by chapters %d and %d", ErrInvalidManifest, s.Path, prev, row)
		}
		seen[s.Path] = row
	}
	return nil
}
