package user

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
	renderer *web.Renderer
	logger   logrus.FieldLogger
}

func NewHTTPHandler(service *Service, renderer *web.Renderer, logger logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{service: service, renderer: renderer, logger: logger}
}

type registerReq struct {
	Username string `validate:"required,min=1,max=100,username"`
	Password string `validate:"required,bcrypt_len"`
}

type registerForm struct {
	Username string
}

type registeredUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// RegisterPage handles GET /register
func (h *HTTPHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "", registerForm{})
}

// Register handles POST /register
// @Summary Register a new user
// @Description Form fields username and password. Redirects to /login, or answers JSON for API-style callers
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	req := registerReq{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	form := registerForm{Username: req.Username}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
			return
		}
		h.render(w, r, http.StatusBadRequest, httpx.FirstMessage(details), form)
		return
	}

	newUser, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "Username already exists!", nil)
				return
			}
			h.render(w, r, http.StatusConflict, "Username already exists!", form)
			return
		}
		h.logger.WithError(err).Error("register user")
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
			return
		}
		web.Text(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSONSuccessCreated(w, r, registeredUser{ID: newUser.ID, Username: newUser.Username})
		return
	}
	httpx.SeeOther(w, r, "/login")
}

func (h *HTTPHandler) render(w http.ResponseWriter, r *http.Request, status int, msg string, form registerForm) {
	page := web.Page{
		Title:  "Register",
		Viewer: session.FromContext(r.Context()).Username,
		Error:  msg,
		Data:   form,
	}
	if err := h.renderer.Render(w, status, "register", page); err != nil {
		h.logger.WithError(err).Error("render register page")
	}
}
