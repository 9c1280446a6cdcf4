package book

// Entry is a raw authored chapter, before it has a number
type Entry[C any] struct {
	Title      string `json:"title"`
	Completion string `json:"completion"`
	Path       string `json:"path"`
	Content    C      `json:"-"`
}

// Chapter represents a numbered book chapter
type Chapter[C any] struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Completion string `json:"completion"`
	Path       string `json:"path"`
	Content    C      `json:"-"`
}

// Source describes where a chapter's markdown lives
type Source struct {
	Title      string `yaml:"title" json:"title"`
	Completion string `yaml:"done" json:"done"`
	Path       string `yaml:"path" json:"path"`
	File       string `yaml:"file" json:"file"`
}

// Document is the loaded markdown of a chapter. Markdown is a string so
// copies handed out by the registry cannot change the loaded text.
type Document struct {
	File     string
	Markdown string
}

// Summary is a chapter without its content
type Summary struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Completion string `json:"completion"`
	Path       string `json:"path"`
}

// BookIndex represents the complete table of contents
type BookIndex struct {
	TotalChapters int       `json:"totalChapters"`
	Chapters      []Summary `json:"chapters"`
}

// Summarize drops the content of a chapter
func Summarize[C any](ch Chapter[C]) Summary {
	return Summary{
		Number:     ch.Number,
		Title:      ch.Title,
		Completion: ch.Completion,
		Path:       ch.Path,
	}
}

// Index builds the table of contents for a registry
func Index[C any](r *Registry[C]) BookIndex {
	chapters := make([]Summary, 0, r.Len())
	for _, ch := range r.chapters {
		chapters = append(chapters, Summarize(ch))
	}
	return BookIndex{
		TotalChapters: len(chapters),
		Chapters:      chapters,
	}
}
