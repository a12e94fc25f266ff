package controllers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/LinkFox/internal/pkg/database"
	"github.com/ManuelReschke/LinkFox/internal/pkg/linking"
	"github.com/ManuelReschke/LinkFox/internal/pkg/session"
	"github.com/ManuelReschke/LinkFox/internal/pkg/usercontext"
)

// Session key holding the attempt key of an in-flight OAuth1 link
const LINK_ATTEMPT_KEY = "link_attempt_key"

var linkingService *linking.Service

// InitializeAccountController wires the linking service with its repository
// and the redis-backed attempt store.
func InitializeAccountController() {
	linkingService = linking.NewService(
		linking.NewRegistryFromEnv(),
		linking.NewRepository(database.GetDB()),
		linking.NewRedisAttemptStore(),
	)
}

// HandleAccountList returns the user's linked provider accounts.
func HandleAccountList(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	accounts, err := linkingService.ListAccounts(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not load linked accounts",
		})
	}

	return c.JSON(fiber.Map{
		"accounts": accounts,
		"flash":    flash.Get(c),
	})
}

// HandleAccountNew starts linking the given provider and redirects the user
// to the provider's authorize page.
func HandleAccountNew(c *fiber.Ctx) error {
	provider, err := linking.ParseProvider(c.Params("provider"))
	if err != nil {
		return c.Redirect("/accounts", fiber.StatusSeeOther)
	}
	userID := usercontext.GetUserID(c)

	result, err := linkingService.BeginLink(c.UserContext(), userID, provider)
	if err != nil {
		log.Printf("begin link %s for user %d failed: %v", provider, userID, err)
		return linkErrorRedirect(c, provider)
	}

	// OAuth1 attempts need their key parked in the web session until the
	// provider calls back.
	if result.AttemptKey != "" {
		if err := session.SetSessionValue(c, LINK_ATTEMPT_KEY, result.AttemptKey); err != nil {
			return linkErrorRedirect(c, provider)
		}
	}

	return c.Redirect(result.RedirectURL, fiber.StatusSeeOther)
}

// HandleAccountCallback completes a linking attempt with the provider's
// callback parameters and upserts the linked account.
func HandleAccountCallback(c *fiber.Ctx) error {
	provider, err := linking.ParseProvider(c.Params("provider"))
	if err != nil {
		return c.Redirect("/accounts", fiber.StatusSeeOther)
	}
	userID := usercontext.GetUserID(c)

	params := linking.CallbackParams{
		OAuthToken:    c.Query("oauth_token"),
		OAuthVerifier: c.Query("oauth_verifier"),
		Code:          c.Query("code"),
	}

	attemptKey := session.GetSessionValue(c, LINK_ATTEMPT_KEY)
	_ = session.DeleteSessionValue(c, LINK_ATTEMPT_KEY)

	account, err := linkingService.CompleteLink(c.UserContext(), userID, provider, params, attemptKey)
	if err != nil {
		log.Printf("complete link %s for user %d failed: %v", provider, userID, err)
		return linkErrorRedirect(c, provider)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("%s account %s added successfully.", provider, account.ProviderDisplayName),
	}
	return flash.WithSuccess(c, fm).Redirect("/accounts")
}

func linkErrorRedirect(c *fiber.Ctx, provider linking.Provider) error {
	fm := fiber.Map{
		"type":    "error",
		"message": fmt.Sprintf("Could not add the %s account.", provider),
	}
	return flash.WithError(c, fm).Redirect("/accounts")
}
