package book

import "fmt"

// Registry is the ordered, numbered list of chapters. It is built once and
// never changes afterwards, so it can be shared between goroutines freely.
// Chapters are handed out by value; a content type holding slices or maps
// is shared with the registry and must be treated as read-only.
type Registry[C any] struct {
	chapters []Chapter[C]
	byPath   map[string]int
}

// New numbers entries in authored order. The entries slice is not modified.
func New[C any](entries []Entry[C]) *Registry[C] {
	r := &Registry[C]{
		chapters: make([]Chapter[C], len(entries)),
		byPath:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		r.chapters[i] = Chapter[C]{
			Number:     i + 1,
			Title:      e.Title,
			Completion: e.Completion,
			Path:       e.Path,
			Content:    e.Content,
		}
		// First chapter wins on a duplicate path
		if _, ok := r.byPath[e.Path]; !ok {
			r.byPath[e.Path] = i
		}
	}
	return r
}

// Len returns the number of chapters
func (r *Registry[C]) Len() int {
	return len(r.chapters)
}

// Chapters returns a copy of all chapters in order
func (r *Registry[C]) Chapters() []Chapter[C] {
	out := make([]Chapter[C], len(r.chapters))
	copy(out, r.chapters)
	return out
}

// At returns the chapter with the given 1-based number
func (r *Registry[C]) At(number int) (Chapter[C], error) {
	if number < 1 || number > len(r.chapters) {
		return Chapter[C]{}, fmt.Errorf("%w: number %d", ErrChapterNotFound, number)
	}
	return r.chapters[number-1], nil
}

// First returns the first chapter, if any
func (r *Registry[C]) First() (Chapter[C], bool) {
	if len(r.chapters) == 0 {
		return Chapter[C]{}, false
	}
	return r.chapters[0], true
}

// Lookup finds a chapter by its route path
func (r *Registry[C]) Lookup(path string) (Chapter[C], error) {
	i, ok := r.byPath[path]
	if !ok {
		return Chapter[C]{}, fmt.Errorf("%w: %s", ErrChapterNotFound, path)
	}
	return r.chapters[i], nil
}

// Previous returns the chapter before current as a slice of zero or one
// elements. The first chapter has no previous chapter.
func (r *Registry[C]) Previous(current Chapter[C]) ([]Chapter[C], error) {
	if err := r.check(current); err != nil {
		return nil, err
	}
	if current.Number < 2 {
		return []Chapter[C]{}, nil
	}
	return []Chapter[C]{r.chapters[current.Number-2]}, nil
}

// Next returns the chapter after current as a slice of zero or one
// elements. The last chapter has no next chapter.
func (r *Registry[C]) Next(current Chapter[C]) ([]Chapter[C], error) {
	if err := r.check(current); err != nil {
		return nil, err
	}
	if current.Number == len(r.chapters) {
		return []Chapter[C]{}, nil
	}
	return []Chapter[C]{r.chapters[current.Number]}, nil
}

// check rejects chapters that are not part of this registry. A chapter
// carrying only a number is accepted; one carrying a path must match.
func (r *Registry[C]) check(current Chapter[C]) error {
	if current.Number < 1 || current.Number > len(r.chapters) {
		return fmt.Errorf("%w: number %d of %d", ErrInvalidChapter, current.Number, len(r.chapters))
	}
	if current.Path != "" && r.chapters[current.Number-1].Path != current.Path {
		return fmt.Errorf("%w: number %d is not %s", ErrInvalidChapter, current.Number, current.Path)
	}
	return nil
}
