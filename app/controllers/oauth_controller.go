package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/revivapix/RevivaPix/app/models"
	"github.com/revivapix/RevivaPix/app/repository"
	"github.com/revivapix/RevivaPix/internal/pkg/session"
	"github.com/revivapix/RevivaPix/internal/pkg/usercontext"
)

// OAuthController handles the Google sign-in flow.
type OAuthController struct {
	users repository.UserRepository
}

// NewOAuthController creates an OAuth controller
func NewOAuthController(users repository.UserRepository) *OAuthController {
	return &OAuthController{users: users}
}

// HandleOAuthBegin redirects to the provider's consent screen
func (oc *OAuthController) HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in.
// First-time sign-ins get an account with the free credit allotment.
func (oc *OAuthController) HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "oauth_failed", "message": fmt.Sprintf("OAuth failed: %v", err)})
	}
	if u.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "oauth_failed", "message": "Provider did not return an email"})
	}

	appUser, err := oc.users.GetByEmail(u.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load account"})
		}
		// OAuth accounts carry no local password; they can only sign in
		// through their provider.
		name := firstNonEmpty(u.Name, u.NickName, u.Email)
		appUser, err = models.CreateUser(name, u.Email, "")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create account"})
		}
		if err := oc.users.Create(appUser); err != nil {
			log.Errorf("[OAuth] user creation failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create account"})
		}
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Session init failed"})
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, appUser.ID)
	sess.Set(usercontext.KeyUsername, appUser.Name)
	sess.Set(usercontext.KeyEmail, appUser.Email)
	sess.Set(usercontext.KeyIsAdmin, appUser.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Session save failed"})
	}

	_ = oc.users.UpdateLastLogin(appUser.ID)

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleOAuthLogout clears the provider session and the app session
func (oc *OAuthController) HandleOAuthLogout(c *fiber.Ctx) error {
	_ = gothfiber.Logout(c)
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
