package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"multiplicadores/internal/analytics"
	"multiplicadores/internal/service"
)

// parseFeedBody accepts a bare JSON array of rows or {"data": [...]}.
func parseFeedBody(body []byte) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var rows []map[string]any
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var wrapper struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Data == nil {
		return nil, errors.New("expected a JSON array or {\"data\": [...]}")
	}
	return wrapper.Data, nil
}

// parseDedupQuery maps ?dedup=0/1/true/false to an override, nil when
// absent or unrecognized.
func parseDedupQuery(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		v := true
		return &v
	case "0", "false", "no":
		v := false
		return &v
	}
	return nil
}

func registerWorkatoRoutes(r fiber.Router, workato service.WorkatoService, apiKey string, requireAuth fiber.Handler) {
	r.Get("/test", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "message": "Workato ativo e respondendo!"})
	})

	r.Post("/trigger", func(c *fiber.Ctx) error {
		var body struct {
			Event   string         `json:"event"`
			Payload map[string]any `json:"payload"`
		}
		if err := c.BodyParser(&body); err != nil {
			body.Event = "none"
		}
		if body.Event == "" {
			body.Event = "none"
		}
		return c.JSON(fiber.Map{
			"ok":             true,
			"received_event": body.Event,
			"payload_echo":   body.Payload,
		})
	})

	r.Post("/secure", func(c *fiber.Ctx) error {
		provided := c.Get("X-API-Key")
		if apiKey == "" || provided != apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Chave de API inválida"})
		}
		var data map[string]any
		if err := c.BodyParser(&data); err != nil {
			data = map[string]any{}
		}
		return c.JSON(fiber.Map{"ok": true, "received": data, "status": "Authorized"})
	})

	r.Post("/report", requireAuth, func(c *fiber.Ctx) error {
		rows, err := parseFeedBody(c.Body())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Corpo inválido: envie um array JSON ou {\"data\": [...]}.",
			})
		}

		report, err := workato.Report(c.UserContext(), rows, parseDedupQuery(c.Query("dedup")))
		if err != nil {
			var missing *analytics.MissingColumnsError
			if errors.As(err, &missing) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"status":          "error",
					"message":         "Colunas obrigatórias ausentes.",
					"missing_columns": missing.Columns,
				})
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(report)
	})

	r.Post("/proxy", requireAuth, func(c *fiber.Ctx) error {
		out, err := workato.Proxy(c.UserContext(), c.Body())
		if err != nil {
			var upstream *service.ErrUpstream
			if errors.As(err, &upstream) {
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"status":          "error",
					"upstream_status": upstream.StatusCode,
					"upstream_body":   string(upstream.Payload),
				})
			}
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "upstream request failed")
		}
		return c.JSON(fiber.Map{"status": "ok", "upstream": out})
	})
}
