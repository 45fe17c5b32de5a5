package server

import (
	"net/url"
	"strings"

	"mediafetch/internal/model"
)

const (
	listingRoute  = "/downloads/"
	downloadRoute = "/force-download/"
)

// Linker builds retrieval links under a public base URL.
type Linker struct {
	Base string // e.g. https://files.example.com, no trailing slash needed
}

// Links returns the view, forced-download and listing URLs for an
// artifact. The name is percent-encoded as a single path segment.
func (l Linker) Links(name string) model.Links {
	base := strings.TrimRight(l.Base, "/")
	esc := url.PathEscape(name)
	return model.Links{
		View:     base + listingRoute + esc,
		Download: base + downloadRoute + esc,
		Listing:  base + listingRoute,
	}
}
