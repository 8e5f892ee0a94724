package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"multiplicadores/internal/http/middleware"
	"multiplicadores/internal/service"
)

// validate is shared by handlers that check JSON payloads.
var validate = validator.New()

// Services groups everything the HTTP surface depends on.
type Services struct {
	Auth          service.AuthService
	Matricula     service.MatriculaService
	Presenca      service.PresencaService
	Checkin       service.CheckinService
	Workato       service.WorkatoService
	Felicitacoes  service.FelicitacoesService
	WorkatoAPIKey string
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay thin; business rules live in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, s Services) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoint: checks DB connectivity only
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probes
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/ready", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	requireAuth := middleware.RequireAuth(s.Auth)

	registerAuthRoutes(app.Group("/auth"), s.Auth, requireAuth)
	registerMatriculaRoutes(app.Group("/matricula"), s.Matricula, requireAuth)
	registerPresencaRoutes(app.Group("/presenca"), s.Presenca)
	registerCheckinRoutes(app.Group("/checkin"), s.Checkin)
	registerWorkatoRoutes(app.Group("/workato"), s.Workato, s.WorkatoAPIKey, requireAuth)
	registerFelicitacoesRoutes(app.Group("/felicitacoes"), s.Felicitacoes)
}
