package rentalweb

import (
	stderrors "errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/nyaruka/phonenumbers"
)

// RegisterWebRoutes mounts the session pages: login, logout, registration,
// the OAuth callback, and the not-authorized page.
func RegisterWebRoutes[T any](app router.Router[T], opts ...WebControllerOption) {
	controller := NewWebController(opts...)

	app.Get(controller.Routes.Login, controller.LoginShow).
		SetName("sign-in.get")
	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).
		SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	app.Get(controller.Routes.OAuthCallback, controller.OAuthCallback).
		SetName("oauth-callback.get")

	app.Get(controller.Routes.NotAuthorized, controller.NotAuthorizedShow).
		SetName("not-authorized.get")
}

type WebControllerRoutes struct {
	Login         string
	Logout        string
	Register      string
	OAuthCallback string
	NotAuthorized string
}

type WebControllerViews struct {
	Login         string
	Register      string
	NotAuthorized string
}

type WebController struct {
	Debug        bool
	Logger       Logger
	Auther       *WebAuthenticator
	Completions  *CompletionHandler
	Routes       *WebControllerRoutes
	Views        *WebControllerViews
	AdminLanding string
	UserLanding  string
	ErrorHandler router.ErrorHandler
}

type WebControllerOption func(*WebController) *WebController

// WithAuther injects the HTTP session layer. Required.
func WithAuther(auther *WebAuthenticator) WebControllerOption {
	return func(c *WebController) *WebController {
		c.Auther = auther
		return c
	}
}

// WithCompletions injects the OAuth completion handler. Required.
func WithCompletions(completions *CompletionHandler) WebControllerOption {
	return func(c *WebController) *WebController {
		c.Completions = completions
		return c
	}
}

// WithControllerLogger overrides the default logger.
func WithControllerLogger(logger Logger) WebControllerOption {
	return func(c *WebController) *WebController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewWebController(opts ...WebControllerOption) *WebController {
	c := &WebController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		AdminLanding: "/admin",
		UserLanding:  "/profile",
		Routes: &WebControllerRoutes{
			Login:         "/login",
			Logout:        "/logout",
			Register:      "/register",
			OAuthCallback: "/oauth/callback",
			NotAuthorized: "/not-authorized",
		},
		Views: &WebControllerViews{
			Login:         "login",
			Register:      "register",
			NotAuthorized: "errors/403",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing WebAuthenticator in web controller...")
	}

	if c.Completions == nil {
		c.Completions = NewCompletionHandler(nil).
			WithLandings(c.AdminLanding, c.UserLanding).
			WithLogger(c.Logger)
	}

	return c
}

func (a *WebController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *WebController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	result, err := a.Auther.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		errs := map[string]string{}
		if IsCredentialError(err) {
			errs["authentication"] = "Invalid email or password"
		} else {
			errs["authentication"] = "Unable to sign in right now, try again"
		}
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	redirect := a.Auther.GetRedirect(ctx, a.landingFor(result.Role))
	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *WebController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect("/", router.StatusTemporaryRedirect)
}

func (a *WebController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegistrationCreatePayload{},
	})
}

// RegistrationCreatePayload is the form payload
type RegistrationCreatePayload struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
	Address         string `form:"address" json:"address"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Required, validation.By(ValidatePhoneNumber)),
		validation.Field(&r.Address, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *WebController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	reg := Registration{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Address:  payload.Address,
		Password: payload.Password,
	}

	if err := a.Auther.Register(ctx, reg); err != nil {
		a.Logger.Error("register rejected: %v", err)

		validationErrs := FieldErrors(err)
		if validationErrs == nil {
			validationErrs = map[string]string{"registration": "Registration failed"}
		}

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Registration failed",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": validationErrs,
		})
	}

	// registration never signs the user in; they log in explicitly
	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Account created, you can sign in now",
	}).Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

// OAuthCallback lands the provider redirect. The token and role travel in
// the query string; a replayed callback resolves to its original outcome.
func (a *WebController) OAuthCallback(ctx router.Context) error {
	params := CallbackParams{
		Token: ctx.Query("token"),
		Role:  Role(ctx.Query("role")),
	}

	store := a.Auther.SessionStore(ctx)
	outcome := a.Completions.CompleteWith(ctx.Context(), store, params)

	if !outcome.Succeeded() {
		a.Logger.Error("oauth callback failed: %v", outcome.Err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  "Sign in could not be completed",
			"system_message": "OAuth sign in failed",
		}).Redirect(outcome.Destination, fiber.StatusSeeOther)
	}

	// a pending destination recorded before the provider hop wins over the
	// role-based landing
	redirect := a.Auther.GetRedirect(ctx, outcome.Destination)
	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *WebController) NotAuthorizedShow(ctx router.Context) error {
	return ctx.Status(fiber.StatusForbidden).Render(a.Views.NotAuthorized, router.ViewContext{})
}

func (a *WebController) landingFor(role Role) string {
	if role == RoleAdmin {
		return a.AdminLanding
	}
	return a.UserLanding
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("values must match")
		}
		return nil
	}
}

// ValidatePhoneNumber checks the value parses as a dialable phone number.
// Bare national numbers are tried against the default region before failing.
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return stderrors.New("must be a phone number")
	}

	num, err := phonenumbers.Parse(s, "IN")
	if err != nil {
		return fmt.Errorf("must be a valid phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return stderrors.New("must be a valid phone number")
	}

	return nil
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field-to-message map templates can render inline.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["validation"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
