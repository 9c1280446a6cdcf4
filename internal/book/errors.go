package book

import "errors"

var (
	// ErrInvalidChapter is returned when a navigation query is given a
	// chapter that does not belong to the registry.
	ErrInvalidChapter = errors.New("invalid chapter reference")

	// ErrChapterNotFound is returned when no chapter matches a path or number.
	ErrChapterNotFound = errors.New("chapter not found")

	// ErrContentNotFound is returned when a chapter's markdown file
	// cannot be read at load time.
	ErrContentNotFound = errors.New("chapter content not found")

	// ErrInvalidManifest is returned when a chapter table fails validation.
	ErrInvalidManifest = errors.New("invalid chapter manifest")
)
