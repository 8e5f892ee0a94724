package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"multiplicadores/internal/database"
	"multiplicadores/internal/service"
)

func registerAuthRoutes(r fiber.Router, auth service.AuthService, requireAuth fiber.Handler) {
	r.Post("/login", func(c *fiber.Ctx) error {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		}

		res, err := auth.Login(c.UserContext(), body.Username, body.Password)
		if err != nil {
			if errors.Is(err, service.ErrBadCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"ok":      false,
					"message": "Usuário ou senha inválidos.",
				})
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{
			"ok":         true,
			"token":      res.Token,
			"expires_in": res.ExpiresIn,
		})
	})

	// admin account creation, restricted to authenticated admins
	r.Post("/register", requireAuth, func(c *fiber.Ctx) error {
		var body struct {
			Username string `json:"username" validate:"required"`
			Password string `json:"password" validate:"required"`
			Role     string `json:"role" validate:"omitempty,oneof=admin viewer"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		}
		if err := validate.Struct(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION", "username and password are required; role must be admin or viewer")
		}
		if body.Role == "" {
			body.Role = "viewer"
		}

		u, err := auth.Register(c.UserContext(), body.Username, body.Password, body.Role)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return writeError(c, fiber.StatusConflict, "CONFLICT", "username already exists")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	})
}
