package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/revivapix/RevivaPix/app/controllers"
	"github.com/revivapix/RevivaPix/internal/pkg/middleware"
	"github.com/revivapix/RevivaPix/internal/pkg/oauth"
	"github.com/revivapix/RevivaPix/internal/pkg/session"
)

// Router installs a group of routes onto the app
type Router interface {
	InstallRouter(app *fiber.App)
}

// Controllers bundles the controller instances the routers dispatch to.
// They are constructed once at startup and passed in; no controller reaches
// for global state.
type Controllers struct {
	Auth    *controllers.AuthController
	OAuth   *controllers.OAuthController
	Payment *controllers.PaymentController
	Credits *controllers.CreditsController
	Image   *controllers.ImageController
}

// InstallRouter wires session handling, OAuth providers, the user context
// middleware and all route groups.
func InstallRouter(app *fiber.App, ctrl Controllers) {
	// Install AuthRouter first to initialize session store, oauth providers,
	// and the global UserContext middleware. Then register API routes which
	// depend on that middleware.
	setup(app, NewAuthRouter(ctrl), NewApiRouter(ctrl))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

// AuthRouter installs the session plumbing and the auth/OAuth routes.
type AuthRouter struct {
	ctrl Controllers
}

func NewAuthRouter(ctrl Controllers) *AuthRouter {
	return &AuthRouter{ctrl: ctrl}
}

func (h AuthRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	app.Post("/api/register", h.ctrl.Auth.HandleRegister)
	app.Post("/api/login", h.ctrl.Auth.HandleLogin)
	app.Post("/api/logout", h.ctrl.Auth.HandleLogout)
	app.Get("/api/me", middleware.RequireAPISessionAuth, h.ctrl.Auth.HandleMe)

	app.Get("/auth/:provider", h.ctrl.OAuth.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", h.ctrl.OAuth.HandleOAuthCallback)
	app.Get("/auth/logout", h.ctrl.OAuth.HandleOAuthLogout)
}
