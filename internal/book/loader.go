package book

import (
	"fmt"
	"io/fs"
)

// Load reads the markdown of every source from fsys, keeping the order of
// sources. Any missing file fails the whole load.
func Load(fsys fs.FS, sources []Source) ([]Entry[Document], error) {
	entries := make([]Entry[Document], 0, len(sources))
	for _, s := range sources {
		content, err := fs.ReadFile(fsys, s.File)
		if err != nil {
			return nil, fmt.Errorf("%w: %s (%s): %w", ErrContentNotFound, s.File, s.Title, err)
		}
		entries = append(entries, Entry[Document]{
			Title:      s.Title,
			Completion: s.Completion,
			Path:       s.Path,
			Content: Document{
				File:     s.File,
				Markdown: string(content),
			},
		})
	}
	return entries, nil
}

// LoadRegistry loads sources from fsys and numbers them
func LoadRegistry(fsys fs.FS, sources []Source) (*Registry[Document], error) {
	entries, err := Load(fsys, sources)
	if err != nil {
		return nil, err
	}
	return New(entries), nil
}
