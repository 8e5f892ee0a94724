package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2"

	"multiplicadores/internal/service"
)

const pageStyle = `body{font-family:system-ui;margin:40px}.mono{font-family:ui-monospace,Consolas,Menlo,monospace}form{display:flex;gap:8px}input{padding:8px 10px}button{padding:8px 12px;font-weight:700}`

func htmlPage(c *fiber.Ctx, status int, title, body string) error {
	page := fmt.Sprintf(`<!doctype html><meta charset="utf-8"><title>%s</title><style>%s</style>%s`,
		html.EscapeString(title), pageStyle, body)
	return c.Status(status).Type("html").SendString(page)
}

func registerMatriculaRoutes(r fiber.Router, matriculas service.MatriculaService, requireAuth fiber.Handler) {
	r.Get("/consulta", func(c *fiber.Ctx) error {
		body := fmt.Sprintf(`<h1>Consulta de Matrícula</h1>
<form action="/matricula/resultado" method="get">
  <input name="code" placeholder="%s" />
  <button>Consultar</button>
</form>`, html.EscapeString(matriculas.FormatHint()))
		return htmlPage(c, fiber.StatusOK, "Consulta de Matrícula", body)
	})

	r.Get("/resultado", func(c *fiber.Ctx) error {
		code := matriculas.NormalizeCode(c.Query("code"))

		m, err := matriculas.Validate(c.UserContext(), code)
		switch {
		case errors.Is(err, service.ErrCodeRequired), errors.Is(err, service.ErrInvalidFormat):
			body := fmt.Sprintf(`<p>❌ Formato inválido. Use <b>%s</b>.</p><p><a href="/matricula/consulta">Voltar</a></p>`,
				html.EscapeString(matriculas.FormatHint()))
			return htmlPage(c, fiber.StatusBadRequest, "Consulta de Matrícula", body)
		case errors.Is(err, service.ErrNotFound):
			body := fmt.Sprintf(`<h1>❌ Não encontrada</h1><p>Matrícula <b class="mono">%s</b> não foi localizada.</p><p><a href="/matricula/consulta">Nova consulta</a></p>`,
				html.EscapeString(code))
			return htmlPage(c, fiber.StatusNotFound, "Consulta de Matrícula", body)
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		holder := ""
		if m.HolderName != "" {
			holder = " — " + html.EscapeString(m.HolderName)
		}
		body := fmt.Sprintf(`<h1>✅ Encontrada</h1><p>Matrícula <b class="mono">%s</b>%s</p><p>Status: <b>%s</b></p><p><a href="/matricula/consulta">Nova consulta</a></p>`,
			html.EscapeString(m.Code), holder, html.EscapeString(m.Status))
		return htmlPage(c, fiber.StatusOK, "Consulta de Matrícula", body)
	})

	r.Get("/validate", func(c *fiber.Ctx) error {
		code := matriculas.NormalizeCode(c.Query("code"))

		m, err := matriculas.Validate(c.UserContext(), code)
		switch {
		case errors.Is(err, service.ErrCodeRequired), errors.Is(err, service.ErrInvalidFormat):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"valid":  false,
				"reason": fmt.Sprintf("Formato inválido (%s).", matriculas.FormatHint()),
			})
		case errors.Is(err, service.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"valid":  false,
				"reason": "Não encontrada.",
			})
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(fiber.Map{
			"valid":       true,
			"code":        m.Code,
			"holder_name": m.HolderName,
			"status":      m.Status,
		})
	})

	// compute-only deterministic generation; nothing is persisted
	r.Post("/gerar", func(c *fiber.Ctx) error {
		var body struct {
			CPF string `json:"cpf"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "CPF inválido (esperado 11 dígitos)"})
		}

		clean, code, err := matriculas.CodeFromCPF(body.CPF)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "CPF inválido (esperado 11 dígitos)"})
		}
		return c.JSON(fiber.Map{"cpf": clean, "matricula": code})
	})

	r.Post("/", requireAuth, func(c *fiber.Ctx) error {
		var body struct {
			CPF        string `json:"cpf"`
			HolderName string `json:"holder_name"`
			BirthDate  string `json:"birth_date"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		}

		m, err := matriculas.Enroll(c.UserContext(), body.CPF, body.HolderName, body.BirthDate)
		switch {
		case errors.Is(err, service.ErrInvalidCPF):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "CPF inválido."})
		case errors.Is(err, service.ErrInvalidBirthDate):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "Data de nascimento inválida (YYYY-MM-DD ou DD/MM/YYYY)."})
		case errors.Is(err, service.ErrAlreadyEnrolled):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"ok": false, "message": "CPF já possui matrícula."})
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "matricula": m})
	})

	r.Get("/list.json", func(c *fiber.Ctx) error {
		list, err := matriculas.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		items := make([]fiber.Map, 0, len(list))
		for _, m := range list {
			items = append(items, fiber.Map{
				"code":        m.Code,
				"holder_name": m.HolderName,
				"cpf":         m.CPF,
				"status":      m.Status,
			})
		}
		return c.JSON(fiber.Map{"count": len(items), "items": items})
	})

	r.Get("/export.csv", func(c *fiber.Ctx) error {
		list, err := matriculas.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Write([]string{"code", "holder_name", "cpf", "status"})
		for _, m := range list {
			w.Write([]string{m.Code, m.HolderName, m.CPF, m.Status})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename=matriculas.csv`)
		return c.Send(buf.Bytes())
	})
}
