package v1

import (
	"github.com/gofiber/fiber/v2"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"
)

// BrowserWriteValues are the Sec-Fetch-Site values accepted on write
// endpoints. Only the app's own pages may record burns or change preferences.
var BrowserWriteValues = []string{"same-origin", "same-site", "none"}

// RequireBrowserWrite rejects POST requests that do not come from a browser
// on the app's own site. Requests without Sec-Fetch-Site are server-to-server
// and are blocked as well.
func RequireBrowserWrite() fiber.Handler {
	secFetch := cartridgemiddleware.SecFetchSiteMiddleware(cartridgemiddleware.SecFetchSiteConfig{
		AllowedValues: BrowserWriteValues,
		Methods:       []string{fiber.MethodPost},
	})

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost && c.Get("Sec-Fetch-Site") == "" {
			return c.SendStatus(fiber.StatusForbidden)
		}
		return secFetch(c)
	}
}
