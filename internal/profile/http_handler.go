package profile

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/sirupsen/logrus"

	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/blobstore"
	"bookshelf/internal/session"
	"bookshelf/internal/user"
	"bookshelf/internal/web"
)

// maxFormMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const maxFormMemory = 4 << 20

type HTTPHandler struct {
	service  *Service
	renderer *web.Renderer
	logger   logrus.FieldLogger
	maxBody  int64
}

// NewHTTPHandler caps edit_profile bodies at maxBody bytes.
func NewHTTPHandler(service *Service, renderer *web.Renderer, logger logrus.FieldLogger, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, renderer: renderer, logger: logger, maxBody: maxBody}
}

// Show handles GET /profile/{username}
func (h *HTTPHandler) Show(w http.ResponseWriter, r *http.Request) {
	viewer := session.FromContext(r.Context())
	p, err := h.service.GetProfile(r.Context(), viewer, r.PathValue("username"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			web.Text(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, r, err, "get profile")
		return
	}
	h.render(w, r, http.StatusOK, "profile", web.Page{Title: p.User.Username, Data: p})
}

// EditForm handles GET /edit_profile
func (h *HTTPHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Current(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		if errors.Is(err, session.ErrAuthRequired) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.internalError(w, r, err, "load profile for edit")
		return
	}
	h.render(w, r, http.StatusOK, "edit_profile", web.Page{Title: "Edit profile", Data: u})
}

// Edit handles POST /edit_profile
// @Summary Edit the caller's profile
// @Description Multipart fields bio and profile_pic. A picture failing the upload policy is ignored
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 413 {object} httpx.ErrorResponse
// @Router /edit_profile [post]
func (h *HTTPHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := session.FromContext(r.Context())
	api := httpx.WantsJSON(r)
	if err := id.Require(); err != nil {
		if api {
			httpx.JSONError(w, r, http.StatusForbidden, "AUTH_REQUIRED", "Login required", nil)
			return
		}
		httpx.SeeOther(w, r, "/login")
		return
	}

	if h.maxBody > 0 {
		if r.ContentLength > h.maxBody {
			h.tooLarge(w, r, api)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(w, r, api)
			return
		}
		h.fail(w, r, api, http.StatusBadRequest, "BAD_REQUEST", "Invalid form")
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	cmd := EditCommand{Bio: r.FormValue("bio")}
	file, header, err := r.FormFile("profile_pic")
	switch {
	case err == nil:
		defer file.Close()
		cmd.Avatar = &Upload{Filename: header.Filename, Size: header.Size, Content: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.fail(w, r, api, http.StatusBadRequest, "BAD_REQUEST", "Invalid upload")
		return
	}

	u, err := h.service.EditProfile(r.Context(), id, cmd)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", httpx.RequestIDFrom(r)).Error("edit profile")
		h.fail(w, r, api, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	if api {
		httpx.JSONSuccess(w, r, u, nil)
		return
	}
	httpx.SeeOther(w, r, "/profile/"+url.PathEscape(u.Username))
}

// Avatar handles GET /avatars/{key...}
func (h *HTTPHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	rc, err := h.service.OpenAvatar(r.Context(), key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, blobstore.ErrInvalidKey) {
			http.NotFound(w, r)
			return
		}
		h.internalError(w, r, err, "open avatar")
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	// keys are content addressed
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WithError(err).Warn("stream avatar")
	}
}

func (h *HTTPHandler) tooLarge(w http.ResponseWriter, r *http.Request, api bool) {
	h.fail(w, r, api, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
}

// fail answers with the JSON envelope for API-style requests, plain text otherwise.
func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, api bool, status int, code, msg string) {
	if api {
		httpx.JSONError(w, r, status, code, msg, nil)
		return
	}
	web.Text(w, status, msg)
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
