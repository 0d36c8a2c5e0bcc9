package http

import (
	"os"

	"github.com/gofiber/fiber/v2"
)

// openAPIPath is relative to the directory the server is started from.
const openAPIPath = "api/openapi.yaml"

const redocHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Geocoin API</title>
</head>
<body>
  <redoc spec-url="/docs/openapi.yaml" hide-download-button></redoc>
  <script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
</body>
</html>`

// SetupDocs serves the API reference at /docs and the OpenAPI document at
// /docs/openapi.yaml.
func SetupDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(redocHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if _, err := os.Stat(openAPIPath); err != nil {
			return errNotFound(c, "API description not bundled with this build")
		}
		c.Type("yaml")
		return c.SendFile(openAPIPath)
	})
}
