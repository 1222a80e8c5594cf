package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"bookshelf/internal/catalog"
	"bookshelf/internal/httpx"
	"bookshelf/internal/session"
	"bookshelf/internal/web"
)

type HTTPHandler struct {
	service  *Service
	renderer *web.Renderer
	logger   logrus.FieldLogger
}

func NewHTTPHandler(service *Service, renderer *web.Renderer, logger logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{service: service, renderer: renderer, logger: logger}
}

type addByIDReq struct {
	GoogleID string `json:"google_id" validate:"required"`
}

type addByIDsReq struct {
	GoogleIDs []string `json:"google_ids"`
}

type addedBook struct {
	Success       bool     `json:"success"`
	BookID        int64    `json:"book_id"`
	GoogleID      string   `json:"google_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Thumbnail     string   `json:"thumbnail"`
	Description   string   `json:"description"`
	PublishedDate string   `json:"published_date,omitempty"`
	InfoLink      string   `json:"info_link,omitempty"`
	AlreadyAdded  bool     `json:"already_added"`
}

type batchResponse struct {
	Success    bool           `json:"success"`
	Books      []addedBook    `json:"books"`
	Failed     []BatchFailure `json:"failed"`
	Duplicates []string       `json:"duplicates"`
}

type candidate struct {
	GoogleID    string   `json:"google_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
}

type searchPage struct {
	Query   string
	Results []SearchResult
}

func toAddedBook(b Book, alreadyAdded bool) addedBook {
	return addedBook{
		Success:       true,
		BookID:        b.ID,
		GoogleID:      b.ExternalID,
		Title:         b.Title,
		Authors:       b.Authors,
		Thumbnail:     b.Thumbnail,
		Description:   b.Description,
		PublishedDate: b.PublishedDate,
		InfoLink:      b.InfoLink,
		AlreadyAdded:  alreadyAdded,
	}
}

// Index handles GET /
func (h *HTTPHandler) Index(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListAll(r.Context())
	if err != nil {
		h.internalError(w, r, err, "list all books")
		return
	}
	h.render(w, r, http.StatusOK, "index", web.Page{Data: books})
}

// MyBooks handles GET /my_books
func (h *HTTPHandler) MyBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListMine(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		if errors.Is(err, session.ErrAuthRequired) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.internalError(w, r, err, "list my books")
		return
	}
	h.render(w, r, http.StatusOK, "my_books", web.Page{Title: "My books", Data: books})
}

// AddByID handles POST /add_book_by_id
// @Summary Add a catalog book to the caller's collection
// @Tags books
// @Accept json
// @Produce json
// @Param request body addByIDReq true "Catalog id"
// @Success 200 {object} addedBook
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /add_book_by_id [post]
func (h *HTTPHandler) AddByID(w http.ResponseWriter, r *http.Request) {
	id := session.FromContext(r.Context())
	if err := id.Require(); err != nil {
		h.jsonError(w, r, err)
		return
	}

	var req addByIDReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", ErrMissingExternalID.Error(), details)
		return
	}

	b, added, err := h.service.AddByExternalID(r.Context(), id, req.GoogleID)
	if err != nil {
		h.jsonError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, toAddedBook(b, !added))
}

// AddBooks handles POST /add_books
// @Summary Search the catalog for books to add
// @Description Form field query. Up to ten candidates with authors as a list
// @Tags books
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {array} candidate
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /add_books [post]
func (h *HTTPHandler) AddBooks(w http.ResponseWriter, r *http.Request) {
	hits, err := h.service.SearchForAdd(r.Context(), session.FromContext(r.Context()), r.PostFormValue("query"))
	if err != nil {
		h.jsonError(w, r, err)
		return
	}
	if len(hits) == 0 {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No books found", nil)
		return
	}

	out := make([]candidate, 0, len(hits))
	for _, s := range hits {
		out = append(out, candidate{
			GoogleID:    s.ExternalID,
			Title:       s.Title,
			Authors:     s.Authors,
			Description: s.Description,
			Thumbnail:   s.Thumbnail,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// AddByIDs handles POST /add_books_by_ids
// @Summary Add several catalog books at once
// @Description Unresolvable ids are skipped and listed in failed; owned ones in duplicates
// @Tags books
// @Accept json
// @Produce json
// @Param request body addByIDsReq true "Catalog ids"
// @Success 200 {object} batchResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /add_books_by_ids [post]
func (h *HTTPHandler) AddByIDs(w http.ResponseWriter, r *http.Request) {
	id := session.FromContext(r.Context())
	if err := id.Require(); err != nil {
		h.jsonError(w, r, err)
		return
	}

	var req addByIDsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	res, err := h.service.AddByExternalIDs(r.Context(), id, req.GoogleIDs)
	if err != nil {
		h.jsonError(w, r, err)
		return
	}

	resp := batchResponse{
		Success:    true,
		Books:      make([]addedBook, 0, len(res.Books)),
		Failed:     res.Failed,
		Duplicates: res.Duplicates,
	}
	for _, b := range res.Books {
		resp.Books = append(resp.Books, toAddedBook(b, false))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// SearchResults handles GET /search_results
func (h *HTTPHandler) SearchResults(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results, err := h.service.SearchResults(r.Context(), session.FromContext(r.Context()), query)

	page := web.Page{Title: "Search"}
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrEmptyQuery):
		web.Text(w, http.StatusBadRequest, "No query provided")
		return
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		h.logger.WithError(err).Warn("search results degraded")
		page.Notice = "The book catalog is unavailable right now. Please try again later."
	default:
		h.internalError(w, r, err, "search results")
		return
	}

	if results == nil {
		results = []SearchResult{}
	}
	page.Data = searchPage{Query: query, Results: results}
	h.render(w, r, http.StatusOK, "search_results", page)
}

// Delete handles POST /delete_book/{id}
// @Summary Remove a book from the caller's collection
// @Description Answers JSON for API-style requests and redirects otherwise
// @Tags books
// @Param id path int true "Book id"
// @Success 200 {object} map[string]any
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /delete_book/{id} [post]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	api := httpx.WantsJSON(r)

	bookID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || bookID <= 0 {
		err = ErrNotFound
	} else {
		err = h.service.Delete(r.Context(), session.FromContext(r.Context()), bookID)
	}

	if api {
		if err != nil {
			h.jsonError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "book_id": bookID})
		return
	}

	switch {
	case err == nil, errors.Is(err, ErrForbidden):
		httpx.SeeOther(w, r, "/my_books")
	case errors.Is(err, session.ErrAuthRequired):
		httpx.SeeOther(w, r, "/login")
	case errors.Is(err, ErrNotFound):
		web.Text(w, http.StatusNotFound, "Book not found")
	default:
		h.internalError(w, r, err, "delete book")
	}
}

// jsonError maps domain errors onto the JSON error envelope.
func (h *HTTPHandler) jsonError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrAuthRequired):
		httpx.JSONError(w, r, http.StatusForbidden, "AUTH_REQUIRED", "Login required", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Unauthorized", nil)
	case errors.Is(err, ErrMissingExternalID), errors.Is(err, ErrNoExternalIDs):
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrTooManyExternalIDs):
		msg := fmt.Sprintf("At most %d book IDs per request", MaxBatchIDs)
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", msg, nil)
	case errors.Is(err, catalog.ErrEmptyQuery):
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "No query provided", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, catalog.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found in catalog", nil)
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		h.logger.WithError(err).Warn("catalog provider failure")
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Book catalog unavailable", nil)
	default:
		h.logger.WithError(err).WithField("request_id", httpx.RequestIDFrom(r)).Error("book request failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error, op string) {
	h.logger.WithError(err).WithField("request_id", httpx.RequestIDFrom(r)).Error(op)
	web.Text(w, http.StatusInternalServerError, "Internal server error")
}

func (h *HTTPHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, page web.Page) {
	page.Viewer = session.FromContext(r.Context()).Username
	if err := h.renderer.Render(w, status, name, page); err != nil {
		h.logger.WithError(err).Error("render " + name)
	}
}
