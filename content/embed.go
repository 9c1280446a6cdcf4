// Package content holds the markdown chapters of the book.
package content

import "embed"

// FS contains chapters/*.md, addressed by the file names in the chapter table.
//
//go:embed chapters/*.md
var FS embed.FS
