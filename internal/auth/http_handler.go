package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"bookshelf/internal/httpx"
	"bookshelf/internal/session"
	"bookshelf/internal/web"
)

type HTTPHandler struct {
	service  *Service
	sessions *session.Manager
	renderer *web.Renderer
	logger   logrus.FieldLogger
}

func NewHTTPHandler(service *Service, sessions *session.Manager, renderer *web.Renderer, logger logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{service: service, sessions: sessions, renderer: renderer, logger: logger}
}

type loginReq struct {
	Username string `validate:"required,max=100"`
	Password string `validate:"required,bcrypt_len"`
}

type loginForm struct {
	Username string
}

type loggedInUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginPage handles GET /login
func (h *HTTPHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "", loginForm{})
}

// Login handles POST /login
// @Summary User login
// @Description Form fields username and password. Sets the session cookie
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	req := loginReq{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	form := loginForm{Username: req.Username}
	api := httpx.WantsJSON(r)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		if api {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
			return
		}
		h.render(w, r, http.StatusBadRequest, httpx.FirstMessage(details), form)
		return
	}

	id, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if api {
				httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials!", nil)
				return
			}
			h.render(w, r, http.StatusUnauthorized, "Invalid credentials!", form)
			return
		}
		h.fail(w, r, err, "login")
		return
	}

	if err := h.sessions.Issue(w, id); err != nil {
		h.fail(w, r, err, "issue session")
		return
	}
	h.logger.WithFields(logrus.Fields{"user_id": id.UserID, "request_id": httpx.RequestIDFrom(r)}).Info("user logged in")

	if api {
		httpx.JSONSuccess(w, r, loggedInUser{ID: id.UserID, Username: id.Username}, nil)
		return
	}
	httpx.SeeOther(w, r, "/my_books")
}

// Logout handles GET /logout. It is safe to call when already logged out.
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	h.logger.WithError(err).WithField("request_id", httpx.RequestIDFrom(r)).Error(op)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	web.Text(w, http.StatusInternalServerError, "Internal server error")
}

func (h *HTTPHandler) render(w http.ResponseWriter, r *http.Request, status int, msg string, form loginForm) {
	page := web.Page{
		Title:  "Log in",
		Viewer: session.FromContext(r.Context()).Username,
		Error:  msg,
		Data:   form,
	}
	if err := h.renderer.Render(w, status, "login", page); err != nil {
		h.logger.WithError(err).Error("render login page")
	}
}
