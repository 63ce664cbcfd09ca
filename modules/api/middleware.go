package api

import (
	"errors"
	"time"

	"github.com/example/channel-board-demo/modules/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// ClientCookieName is the cookie carrying the signed client token.
	ClientCookieName = "cb_client"
	// ClientContextKey is the key used to store the client ID in the Fiber context.
	ClientContextKey = "client_id"
	// UserContextKey is the key used to store the signed-in user in the Fiber context.
	UserContextKey = "user"
)

// ClientMiddleware identifies the browser behind a request. A missing or
// invalid cookie starts a new client with a fresh ID.
func ClientMiddleware(tokens *ClientTokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID, err := tokens.Validate(c.Cookies(ClientCookieName))
		if err != nil {
			clientID = uuid.NewString()
			token, err := tokens.Issue(clientID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to issue client token")
			}
			c.Cookie(&fiber.Cookie{
				Name:     ClientCookieName,
				Value:    token,
				Path:     "/",
				Expires:  time.Now().Add(tokens.TTL()),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(ClientContextKey, clientID)
		return c.Next()
	}
}

// SessionMiddleware requires a signed-in user. Requests without one are
// passed to onMissing instead of the next handler.
func SessionMiddleware(sessions session.SessionPort, onMissing fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := sessions.CurrentUser(c.UserContext(), clientID(c))
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return onMissing(c)
			}
			return err
		}

		c.Locals(UserContextKey, user)
		return c.Next()
	}
}

// redirectToAuth sends screen requests without a session to the login page.
func redirectToAuth(c *fiber.Ctx) error {
	return c.Redirect("/auth", fiber.StatusFound)
}

// unauthorized rejects API requests without a session.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "Login required",
	})
}

func clientID(c *fiber.Ctx) string {
	id, _ := c.Locals(ClientContextKey).(string)
	return id
}
