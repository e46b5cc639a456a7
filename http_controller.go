package auth

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController exposes the lifecycle operations as a JSON API. All logic
// stays in the Manager; this layer binds payloads, resolves the principal,
// and maps errors onto HTTP statuses.
type HTTPController struct {
	Debug   bool
	Logger  Logger
	manager *Manager
}

// NewHTTPController creates the controller for a Manager
func NewHTTPController(manager *Manager) *HTTPController {
	if manager == nil {
		panic("Missing Manager in auth controller...")
	}

	return &HTTPController{
		Logger:  defLogger{},
		manager: manager,
	}
}

// RegisterRoutes registers the auth routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/login", c.Login)
	group.Post("/login/google", c.LoginWithGoogle)
	group.Post("/register", c.Register)
	group.Get("/confirm/register", c.ConfirmRegistration)
	group.Post("/refresh", c.Refresh)
	group.Post("/logout", c.Logout)
	group.Delete("/token", c.DropToken)
	group.Post("/delete", c.RequestDeletion)
	group.Get("/confirm/delete", c.ConfirmDeletion)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// Login authenticates an email/password pair
func (c *HTTPController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.badRequest(ctx, err)
	}

	if c.Debug {
		fmt.Println(print.MaybePrettyJSON(map[string]string{"email": payload.Email}))
	}

	result, err := c.manager.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

// GoogleLoginRequest carries the authorization code from the client
type GoogleLoginRequest struct {
	Code string `form:"code" json:"code"`
}

// Validate will run validation rules
func (r GoogleLoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required),
	)
}

// LoginWithGoogle runs the authorization-code flow
func (c *HTTPController) LoginWithGoogle(ctx router.Context) error {
	payload := new(GoogleLoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.badRequest(ctx, err)
	}

	result, err := c.manager.AuthenticateWithGoogle(ctx.Context(), payload.Code)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

// Register creates a new inactive account and triggers the confirmation email
func (c *HTTPController) Register(ctx router.Context) error {
	payload := new(RegisterUserMessage)

	if err := ctx.Bind(payload); err != nil {
		return c.badRequest(ctx, err)
	}

	user, err := c.manager.Register(ctx.Context(), *payload)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, user)
}

// ConfirmRegistration consumes the emailed verification token
func (c *HTTPController) ConfirmRegistration(ctx router.Context) error {
	token := ctx.Query("token", "")
	if token == "" {
		return c.badRequest(ctx, goerrors.New("missing token parameter", goerrors.CategoryBadInput))
	}

	if err := c.manager.ConfirmRegistration(ctx.Context(), token); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{"status": "confirmed"})
}

// RefreshRequest carries the opaque refresh token
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// Refresh rotates a refresh token and returns a fresh session
func (c *HTTPController) Refresh(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.badRequest(ctx, err)
	}

	result, err := c.manager.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

// Logout drops every refresh token the authenticated user owns
func (c *HTTPController) Logout(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}

	if err := c.manager.DropAllRefreshTokens(ctx.Context(), user); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{"status": "logged_out"})
}

// DropToken deletes a single token; missing values are a successful no-op
func (c *HTTPController) DropToken(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.badRequest(ctx, err)
	}

	if payload.RefreshToken == "" {
		return c.badRequest(ctx, goerrors.New("missing refresh_token", goerrors.CategoryBadInput))
	}

	if err := c.manager.DropToken(ctx.Context(), payload.RefreshToken); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RequestDeletion issues a deletion token for the authenticated user
func (c *HTTPController) RequestDeletion(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}

	link, err := c.manager.RequestDeletion(ctx.Context(), user)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{"confirmation_link": link})
}

// ConfirmDeletion consumes a deletion token and soft deletes the account
func (c *HTTPController) ConfirmDeletion(ctx router.Context) error {
	token := ctx.Query("token", "")
	if token == "" {
		return c.badRequest(ctx, goerrors.New("missing token parameter", goerrors.CategoryBadInput))
	}

	if err := c.manager.ConfirmDeletion(ctx.Context(), token); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{"status": "deleted"})
}

func (c *HTTPController) badRequest(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]string{
		"error": err.Error(),
	})
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "unexpected error").
			WithCode(goerrors.CodeInternal)
	}

	c.Logger.Info(
		"auth request failed",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": richErr.Message}
	if richErr.TextCode != "" {
		body["text_code"] = richErr.TextCode
	}

	return ctx.JSON(status, body)
}
