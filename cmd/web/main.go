package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"

	rentalweb "github.com/skyfleet/rentals-web"
	"github.com/skyfleet/rentals-web/client"
	"github.com/skyfleet/rentals-web/middleware/tokenware"
)

func main() {
	cfg := LoadConfig()

	logger, flush := newLogger(cfg.Debug)
	defer flush()

	app, err := buildApp(cfg, logger)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}

	logger.Info("listening on %s", cfg.ListenAddr)
	app.srv.Serve(cfg.ListenAddr)

	waitExitSignal()
	logger.Info("shutting down")
}

func waitExitSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

type webApp struct {
	cfg         Config
	logger      *zapLogger
	api         *client.Client
	auther      *rentalweb.WebAuthenticator
	completions *rentalweb.CompletionHandler
	adminOnly   router.MiddlewareFunc
	srv         router.Server[*fiber.App]
}

// claimsValidator lets the session token validator double as the
// middleware's validator, which only needs the AuthClaims surface.
type claimsValidator struct {
	inner rentalweb.TokenValidator
}

func (v claimsValidator) Validate(raw string) (tokenware.AuthClaims, error) {
	claims, err := v.inner.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// newAdminGuard builds the back-office middleware. The session guard
// redirects on the session snapshot; this layer re-validates the raw
// cookie so a stale snapshot never opens /admin.
func newAdminGuard(validator rentalweb.TokenValidator) router.MiddlewareFunc {
	return tokenware.New(tokenware.Config{
		TokenValidator: claimsValidator{validator},
		TokenLookup:    "cookie:" + rentalweb.DefaultTokenCookie,
		RequiredRole:   rentalweb.RoleAdmin,
		ErrorHandler: func(c router.Context, err error) error {
			if errors.Is(err, tokenware.ErrTokenMissingOrMalformed) || rentalweb.IsDecodeError(err) {
				return c.Redirect("/login", router.StatusSeeOther)
			}
			return c.Redirect("/not-authorized", router.StatusSeeOther)
		},
	})
}

func buildApp(cfg Config, logger *zapLogger) (*webApp, error) {
	api := client.New(client.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
		Logger:  logger.named("client"),
	})

	// a published JWK Set upgrades token decoding to full verification
	var validator rentalweb.TokenValidator = rentalweb.NewClaimsDecoder()
	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{})
		if err != nil {
			return nil, err
		}
		validator = rentalweb.NewVerifyingDecoder(jwks.Keyfunc)
	}

	resolver := rentalweb.NewResolver(api.Users).
		WithLogger(logger.named("resolver")).
		WithTokenValidator(validator)

	guard := rentalweb.NewGuard(guardRules(), &rentalweb.MemoryDestinationStore{}).
		WithLogger(logger.named("guard"))

	auther := rentalweb.NewWebAuthenticator(api.Auth, resolver, guard).
		WithCookieDuration(cfg.CookieDuration).
		WithLogger(logger.named("auth"))

	completions := rentalweb.NewCompletionHandler(nil).
		WithLandings("/admin", "/profile").
		WithLogger(logger.named("oauth"))

	engine := django.New(cfg.ViewsDir, ".html")
	engine.AddFuncMap(rentalweb.TemplateHelpers())

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	app := &webApp{
		cfg:         cfg,
		logger:      logger,
		api:         api,
		auther:      auther,
		completions: completions,
		adminOnly:   newAdminGuard(validator),
		srv:         srv,
	}

	registerRoutes(app)

	return app, nil
}

// guardRules mirrors the navigable route table: the catalog and auth pages
// are public, the account pages need a signed-in user, and the back office
// is admin only.
func guardRules() []rentalweb.RouteRule {
	member := rentalweb.RoleSet{rentalweb.RoleUser, rentalweb.RoleAdmin}

	return []rentalweb.RouteRule{
		{Prefix: "/admin", Roles: rentalweb.RoleSet{rentalweb.RoleAdmin}},
		{Prefix: "/profile", Roles: member},
		{Prefix: "/bookings", Roles: member},
		{Prefix: "/payments", Roles: member},
		{Prefix: "/penalties", Roles: member},
		{Prefix: "/undertakings", Roles: member},
		// everything else (catalog, login, register, oauth callback) is public
	}
}

func registerRoutes(app *webApp) {
	r := app.srv.Router()

	r.Use(mflash.New(mflash.ConfigDefault))
	r.Use(app.auther.SessionMiddleware())
	r.Use(app.auther.GuardMiddleware())

	rentalweb.RegisterWebRoutes(r,
		rentalweb.WithAuther(app.auther),
		rentalweb.WithCompletions(app.completions),
		rentalweb.WithControllerLogger(app.logger.named("web")),
	)

	r.Get("/", app.HomeShow).SetName("home.get")
	r.Get("/drones", app.DronesShow).SetName("drones.get")
	r.Get("/drones/:id", app.DroneShow).SetName("drone.get")
	r.Post("/drones/:id/ratings", app.RatingCreate).SetName("drone-ratings.post")

	for _, page := range []string{"about", "contact", "help", "terms", "privacy"} {
		r.Get("/"+page, app.PageShow(page)).SetName(page + ".get")
	}

	r.Get("/profile", app.ProfileShow).SetName("profile.get")
	r.Post("/profile", app.ProfileUpdate).SetName("profile.post")

	r.Get("/bookings", app.BookingsShow).SetName("bookings.get")
	r.Post("/bookings", app.BookingCreate).SetName("bookings.post")
	r.Get("/bookings/:id", app.BookingShow).SetName("booking.get")
	r.Post("/bookings/:id/cancel", app.BookingCancel).SetName("booking-cancel.post")
	r.Post("/bookings/:id/pay", app.PaymentStart).SetName("booking-pay.post")

	r.Post("/payments/verify", app.PaymentVerify).SetName("payments-verify.post")
	r.Post("/undertakings/:id/accept", app.UndertakingAccept).SetName("undertaking-accept.post")

	r.Get("/penalties", app.PenaltiesShow).SetName("penalties.get")

	r.Get("/admin", app.AdminDashboardShow, app.adminOnly).SetName("admin.get")
	r.Get("/admin/bookings", app.AdminBookingsShow, app.adminOnly).SetName("admin-bookings.get")
	r.Post("/admin/bookings/:id/status", app.AdminBookingStatusUpdate, app.adminOnly).SetName("admin-booking-status.post")
	r.Get("/admin/users", app.AdminUsersShow, app.adminOnly).SetName("admin-users.get")
	r.Get("/admin/payments", app.AdminPaymentsShow, app.adminOnly).SetName("admin-payments.get")

	r.Static("/public", app.cfg.PublicDir, router.Static{})
}
