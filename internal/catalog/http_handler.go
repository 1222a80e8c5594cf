package catalog

import (
	"net/http"

	"bookshelf/internal/httpx"
)

// QuickSearchLimit bounds the inline search used by the add-book widget.
const QuickSearchLimit = 5

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type searchItem struct {
	GoogleID    string `json:"google_id"`
	Title       string `json:"title"`
	Authors     string `json:"authors"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
}

// Search handles GET /search_books
// @Summary Quick catalog search
// @Description Up to five catalog summaries; empty on missing query or provider failure
// @Tags catalog
// @Produce json
// @Param q query string false "Search query"
// @Success 200 {array} searchItem
// @Router /search_books [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	results := h.svc.Search(r.Context(), r.URL.Query().Get("q"), QuickSearchLimit)

	items := make([]searchItem, 0, len(results))
	for _, s := range results {
		items = append(items, searchItem{
			GoogleID:    s.ExternalID,
			Title:       s.Title,
			Authors:     s.AuthorList(),
			Thumbnail:   s.Thumbnail,
			Description: s.Description,
		})
	}
	httpx.JSON(w, http.StatusOK, items)
}
