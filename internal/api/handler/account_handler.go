package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/rydwan10/pokecodex/internal/core/domain"
	"github.com/rydwan10/pokecodex/internal/core/service"
)

// AccountHandler exposes registration, authentication, and profile loading.
// Field edits and submissions are forwarded to the account orchestrator; the
// handler waits for completions and renders the terminal snapshot.
type AccountHandler struct {
	svc       *service.AccountService
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAccountHandler(svc *service.AccountService, jwtSecret string, tokenTTL time.Duration) *AccountHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountHandler{svc: svc, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// fieldsRequest carries partial form edits. Only fields present in the JSON
// body are applied, so a client can PUT one keystroke at a time.
type fieldsRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

// RegistrationState renders the current form snapshot.
//
// @Summary      Current registration form state
// @Tags         account
// @Produce      json
// @Success      200  {object}  service.RegistrationState
// @Router       /v1/register [get]
func (h *AccountHandler) RegistrationState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Registration())
}

// UpdateFields applies partial form edits and renders the synchronous
// validation outcome. Debounced uniqueness checks may still be pending when
// the response is written; a later GET observes their result.
//
// @Summary      Edit registration form fields
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      fieldsRequest  true  "Fields to update"
// @Success      200   {object}  service.RegistrationState
// @Failure      400   {object}  map[string]string
// @Router       /v1/register/fields [put]
func (h *AccountHandler) UpdateFields(c echo.Context) error {
	var req fieldsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if req.Username != nil {
		h.svc.SetUsername(*req.Username)
	}
	if req.Email != nil {
		h.svc.SetEmail(*req.Email)
	}
	if req.Password != nil {
		h.svc.SetPassword(*req.Password)
	}
	if req.ConfirmPassword != nil {
		h.svc.SetConfirmPassword(*req.ConfirmPassword)
	}

	return c.JSON(http.StatusOK, h.svc.Registration())
}

// Register runs the submission pipeline to completion. 201 on account
// creation, 422 with the snapshot when the form is invalid or a conflict or
// store failure blocked the submission.
//
// @Summary      Submit the registration form
// @Tags         account
// @Produce      json
// @Success      201  {object}  service.RegistrationState
// @Failure      422  {object}  service.RegistrationState
// @Router       /v1/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	h.svc.Submit()
	h.svc.Await()

	snap := h.svc.Registration()
	if snap.SubmitSucceeded {
		return c.JSON(http.StatusCreated, snap)
	}
	return c.JSON(http.StatusUnprocessableEntity, snap)
}

// Login authenticates a user and returns a signed JWT on success.
//
// @Summary      Login
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/auth/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.svc.Login(req.Username, req.Password)
	h.svc.Await()

	status := h.svc.LoginStatus()
	if !status.Succeeded {
		return echo.NewHTTPError(http.StatusUnauthorized, status.Error)
	}

	token, err := h.mintToken(req.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  h.svc.Profile().CurrentUser,
	})
}

// Logout clears the account state and the session marker.
//
// @Summary      Logout
// @Tags         account
// @Success      204
// @Router       /v1/auth/logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	h.svc.Logout()
	return c.NoContent(http.StatusNoContent)
}

// Profile loads the account behind the current session marker. A missing
// marker renders 401, a dangling marker whose account is gone renders 404.
//
// @Summary      Current user profile
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.ProfileState
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/profile [get]
func (h *AccountHandler) Profile(c echo.Context) error {
	h.svc.LoadCurrentUser()
	h.svc.Await()

	snap := h.svc.Profile()
	if snap.CurrentUser != nil {
		return c.JSON(http.StatusOK, snap)
	}
	if snap.Error == domain.ErrSessionMissing.Error() {
		return domain.ErrSessionMissing
	}
	return echo.NewHTTPError(http.StatusNotFound, snap.Error)
}

func (h *AccountHandler) mintToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(h.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
}
