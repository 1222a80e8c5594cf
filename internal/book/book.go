package book

import (
	"errors"
	"strings"
	"time"

	"bookshelf/internal/catalog"
)

var (
	ErrNotFound           = errors.New("book not found")
	ErrForbidden          = errors.New("book belongs to another user")
	ErrDuplicate          = errors.New("book already in collection")
	ErrMissingExternalID  = errors.New("no book ID provided")
	ErrNoExternalIDs      = errors.New("no book IDs provided")
	ErrTooManyExternalIDs = errors.New("too many book IDs in one request")
)

// Book is a catalog record copied into one user's collection. Only the owner
// may remove it and nothing edits it afterwards.
type Book struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	OwnerUsername string    `json:"owner_username,omitempty"`
	ExternalID    string    `json:"google_id"`
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	Description   string    `json:"description"`
	Thumbnail     string    `json:"thumbnail"`
	PublishedDate string    `json:"published_date,omitempty"`
	InfoLink      string    `json:"info_link,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (b Book) Owner() int64 {
	return b.OwnerID
}

// AuthorList joins the authors for display.
func (b Book) AuthorList() string {
	return strings.Join(b.Authors, ", ")
}

// FromRecord copies the catalog fields of rec into a new book for owner.
func FromRecord(owner int64, rec catalog.Record) Book {
	authors := rec.Authors
	if authors == nil {
		authors = []string{}
	}
	return Book{
		OwnerID:       owner,
		ExternalID:    rec.ExternalID,
		Title:         rec.Title,
		Authors:       authors,
		Description:   rec.Description,
		Thumbnail:     rec.Thumbnail,
		PublishedDate: rec.PublishedDate,
		InfoLink:      rec.InfoLink,
	}
}

// SearchResult is a catalog hit annotated for the current viewer.
type SearchResult struct {
	catalog.Summary
	AlreadyAdded bool
}

type BatchFailure struct {
	ExternalID string `json:"google_id"`
	Reason     string `json:"error"`
}

// BatchResult reports a batch add item by item; unresolvable ids are skipped.
type BatchResult struct {
	Books      []Book
	Failed     []BatchFailure
	Duplicates []string
}
