package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
	"multiplicadores/internal/service"
)

// clientIP prefers the first X-Forwarded-For entry, falling back to the
// socket peer.
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return c.IP()
}

// parseDateParam returns nil when the parameter is absent or malformed,
// matching the original behavior of silently ignoring bad date filters.
func parseDateParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &d
}

func presencaFilterFromQuery(c *fiber.Ctx, codeParam string) repository.PresencaFilter {
	return repository.PresencaFilter{
		Code:  strings.TrimSpace(c.Query(codeParam)),
		Start: parseDateParam(c.Query("start")),
		End:   parseDateParam(c.Query("end")),
	}
}

func presencaDetailMap(r model.PresencaDetail, withCPF bool) fiber.Map {
	m := fiber.Map{
		"id":            r.ID,
		"date_key":      r.DateKey.Format("2006-01-02"),
		"timestamp_utc": r.Timestamp.UTC().Format("2006-01-02T15:04:05"),
		"code":          r.Code,
		"holder_name":   r.HolderName,
		"status":        r.Status,
		"ip":            r.IP,
		"source":        r.Source,
	}
	if withCPF {
		m["cpf"] = r.CPF
	}
	return m
}

func registerPresencaRoutes(r fiber.Router, presencas service.PresencaService) {
	r.Get("/", func(c *fiber.Ctx) error {
		body := `<h1>Registro de Presença</h1>
<form id="f">
  <input name="matricula" placeholder="Matrícula" />
  <button>Registrar</button>
</form>
<p id="out"></p>
<script>
document.getElementById('f').addEventListener('submit', async (e) => {
  e.preventDefault();
  const matricula = e.target.matricula.value.trim();
  const check = await fetch('/presenca/api/check', {method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({matricula})});
  const c = await check.json();
  if (!c.ok) { document.getElementById('out').textContent = c.message; return; }
  const reg = await fetch('/presenca/api/registrar', {method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({matricula})});
  const r = await reg.json();
  if (r.ok) { window.location = '/presenca/sucesso?code=' + encodeURIComponent(matricula); }
  else { document.getElementById('out').textContent = r.message; }
});
</script>`
		return htmlPage(c, fiber.StatusOK, "Registro de Presença", body)
	})

	r.Get("/sucesso", func(c *fiber.Ctx) error {
		code := strings.ToUpper(strings.TrimSpace(c.Query("code")))
		body := fmt.Sprintf(`<h1>✅ Presença registrada</h1><p>Matrícula <b class="mono">%s</b></p><p><a href="/presenca/">Novo registro</a></p>`,
			html.EscapeString(code))
		return htmlPage(c, fiber.StatusOK, "Presença registrada", body)
	})

	r.Post("/api/check", func(c *fiber.Ctx) error {
		var body struct {
			Matricula string `json:"matricula"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "Informe a matrícula."})
		}

		m, err := presencas.Check(c.UserContext(), body.Matricula)
		// format and status failures keep the original 200 + ok:false contract
		switch {
		case errors.Is(err, service.ErrCodeRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "Informe a matrícula."})
		case errors.Is(err, service.ErrInvalidFormat):
			return c.JSON(fiber.Map{"ok": false, "message": "Formato inválido (MR + 5 dígitos)."})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(fiber.Map{"ok": false, "message": "Matrícula não encontrada."})
		case errors.Is(err, service.ErrInactive):
			return c.JSON(fiber.Map{"ok": false, "message": fmt.Sprintf("Matrícula inativa (status: %s).", m.Status)})
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"ok": true, "code": m.Code})
	})

	r.Post("/api/registrar", func(c *fiber.Ctx) error {
		var body struct {
			Matricula string `json:"matricula"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.JSON(fiber.Map{"ok": false, "message": "Formato inválido (MR + 5 dígitos)."})
		}

		res, err := presencas.Register(c.UserContext(), body.Matricula, service.RequestMeta{
			IP:        clientIP(c),
			UserAgent: string(c.Request().Header.UserAgent()),
			Source:    "web",
		})
		switch {
		case errors.Is(err, service.ErrCodeRequired), errors.Is(err, service.ErrInvalidFormat):
			return c.JSON(fiber.Map{"ok": false, "message": "Formato inválido (MR + 5 dígitos)."})
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInactive):
			return c.JSON(fiber.Map{"ok": false, "message": "Matrícula inválida ou inativa."})
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		if res.Already {
			return c.JSON(fiber.Map{"ok": true, "already": true, "code": res.Code, "message": "Presença já registrada hoje."})
		}
		return c.JSON(fiber.Map{"ok": true, "already": false, "id": res.ID, "code": res.Code})
	})

	// GET variant for clients that cannot POST
	r.Get("/api/register", func(c *fiber.Ctx) error {
		code := strings.ToUpper(strings.TrimSpace(c.Query("matricula")))

		m, err := presencas.Check(c.UserContext(), code)
		switch {
		case errors.Is(err, service.ErrCodeRequired), errors.Is(err, service.ErrInvalidFormat):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "msg": "Formato inválido"})
		case errors.Is(err, service.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "msg": "Matrícula não encontrada"})
		case errors.Is(err, service.ErrInactive):
			return c.JSON(fiber.Map{"ok": false, "msg": fmt.Sprintf("Matrícula inativa (status: %s).", m.Status)})
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		res, err := presencas.Register(c.UserContext(), code, service.RequestMeta{
			IP:        clientIP(c),
			UserAgent: string(c.Request().Header.UserAgent()),
			Source:    "api",
		})
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"ok": true, "already": res.Already, "code": res.Code})
	})

	r.Get("/api", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		perPage, _ := strconv.Atoi(c.Query("per_page", "50"))

		res, err := presencas.List(c.UserContext(), presencaFilterFromQuery(c, "matricula"), page, perPage)
		switch {
		case errors.Is(err, service.ErrInvalidFormat):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid_code_format"})
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		items := make([]fiber.Map, 0, len(res.Items))
		for _, row := range res.Items {
			items = append(items, presencaDetailMap(row, false))
		}
		return c.JSON(fiber.Map{
			"ok":       true,
			"total":    res.Total,
			"page":     res.Page,
			"pages":    res.Pages,
			"per_page": res.PerPage,
			"items":    items,
		})
	})

	r.Get("/export.csv", func(c *fiber.Ctx) error {
		rows, err := presencas.Export(c.UserContext(), presencaFilterFromQuery(c, "code"))
		switch {
		case errors.Is(err, service.ErrInvalidFormat):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid_code_format"})
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Write([]string{"id", "date_key", "timestamp_utc", "code", "holder_name", "cpf", "status", "ip", "source"})
		for _, row := range rows {
			w.Write([]string{
				strconv.FormatInt(row.ID, 10),
				row.DateKey.Format("2006-01-02"),
				row.Timestamp.UTC().Format("2006-01-02T15:04:05"),
				row.Code,
				row.HolderName,
				row.CPF,
				row.Status,
				row.IP,
				row.Source,
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename=presencas.csv`)
		return c.Send(buf.Bytes())
	})

	r.Get("/export.json", func(c *fiber.Ctx) error {
		rows, err := presencas.Export(c.UserContext(), presencaFilterFromQuery(c, "code"))
		switch {
		case errors.Is(err, service.ErrInvalidFormat):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid_code_format"})
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		items := make([]fiber.Map, 0, len(rows))
		for _, row := range rows {
			items = append(items, presencaDetailMap(row, true))
		}
		return c.JSON(fiber.Map{"count": len(items), "items": items})
	})
}
