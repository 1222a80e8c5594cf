package catalog

import (
	"errors"
	"strings"

	"bookshelf/internal/platform/googlebooks"
)

// DescriptionPlaceholder stands in for records the provider has no description for.
const DescriptionPlaceholder = "No description available."

var (
	ErrNotFound            = errors.New("catalog record not found")
	ErrEmptyQuery          = errors.New("search query is required")
	ErrUpstreamUnavailable = errors.New("catalog provider unavailable")
)

// Summary is the lightweight view of a provider record shown in search results.
type Summary struct {
	ExternalID  string
	Title       string
	Authors     []string
	Thumbnail   string
	Description string
}

// AuthorList joins the authors for display.
func (s Summary) AuthorList() string {
	return strings.Join(s.Authors, ", ")
}

// Record is everything kept from a provider record when a book is added.
type Record struct {
	Summary
	PublishedDate string
	InfoLink      string
}

func fromVolume(v googlebooks.Volume) (Record, bool) {
	info := v.VolumeInfo
	if info == nil || v.ID == "" {
		return Record{}, false
	}

	rec := Record{
		Summary: Summary{
			ExternalID:  v.ID,
			Title:       info.Title,
			Authors:     info.Authors,
			Description: info.Description,
		},
		PublishedDate: info.PublishedDate,
		InfoLink:      info.InfoLink,
	}
	if rec.Authors == nil {
		rec.Authors = []string{}
	}
	if rec.Description == "" {
		rec.Description = DescriptionPlaceholder
	}
	if info.ImageLinks != nil {
		rec.Thumbnail = info.ImageLinks.Thumbnail
		if rec.Thumbnail == "" {
			rec.Thumbnail = info.ImageLinks.SmallThumbnail
		}
	}
	return rec, true
}
