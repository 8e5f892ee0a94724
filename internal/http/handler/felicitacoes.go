package handler

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"multiplicadores/internal/service"
)

// parseBirthdayBody accepts a single object, a bare list, or
// {"itens": [...]}.
func parseBirthdayBody(body []byte) ([]service.BirthdayItem, bool) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []service.BirthdayItem
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, false
		}
		return items, true
	}

	var wrapper struct {
		Itens []service.BirthdayItem `json:"itens"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Itens != nil {
		return wrapper.Itens, true
	}

	var single service.BirthdayItem
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, false
	}
	if single.Nome == "" && single.Telefone == "" {
		return nil, false
	}
	return []service.BirthdayItem{single}, true
}

func isTruthyFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func registerFelicitacoesRoutes(r fiber.Router, felicitacoes service.FelicitacoesService) {
	// called once a day by the automation platform
	r.Post("/disparar-aniversario", func(c *fiber.Ctx) error {
		items, ok := parseBirthdayBody(c.Body())
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": `Formato inválido. Envie objeto único, lista, ou {"itens": [...]}.`,
			})
		}

		dryRun := isTruthyFlag(c.Query("dry_run", "0"))
		res := felicitacoes.Dispatch(c.UserContext(), items, dryRun)

		return c.JSON(fiber.Map{
			"status":  "ok",
			"summary": res.Summary,
			"today":   res.Today,
			"dry_run": res.DryRun,
			"details": res.Details,
		})
	})
}
