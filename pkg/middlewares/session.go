package middlewares

import (
	"github.com/gofiber/fiber/v2"
)

const (
	//ActiveAccountID active account id, set c.locals name
	ActiveAccountID = "AccountID"
)

// ActiveAccountFunc 回傳目前登入帳號 id
type ActiveAccountFunc func() (accountID string, ok bool)

// RequireActiveAccount rejects the request when nobody is logged in
func RequireActiveAccount(active ActiveAccountFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, ok := active()
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "no active account",
			})
		}

		c.Locals(ActiveAccountID, accountID)
		return c.Next()
	}
}

// AccountID get the id stored by RequireActiveAccount
func AccountID(c *fiber.Ctx) string {
	id, _ := c.Locals(ActiveAccountID).(string)
	return id
}
