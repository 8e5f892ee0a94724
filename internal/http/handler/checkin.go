package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"html"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"multiplicadores/internal/service"
)

// eventDateFrom resolves the event day from the "event" query or form
// value, defaulting to today.
func eventDateFrom(c *fiber.Ctx) time.Time {
	raw := c.Query("event")
	if raw == "" {
		raw = c.FormValue("event")
	}
	if raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			return d
		}
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func checkinErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCPF):
		return "Informe um CPF válido."
	case errors.Is(err, service.ErrInvalidBirthDate):
		return "Informe a data de nascimento válida (YYYY-MM-DD ou DD/MM/YYYY)."
	case errors.Is(err, service.ErrBirthDateMismatch):
		return "Data de nascimento não confere com a base de multiplicadores."
	}
	return ""
}

func registerCheckinRoutes(r fiber.Router, checkins service.CheckinService) {
	r.Get("/", func(c *fiber.Ctx) error {
		eventDate := eventDateFrom(c)
		msg := c.Query("msg")
		notice := ""
		if msg != "" {
			notice = fmt.Sprintf(`<p><b>%s</b></p>`, html.EscapeString(msg))
		}
		body := fmt.Sprintf(`<h1>Check-in do Evento</h1>
<p>Data do evento: <b>%s</b></p>%s
<form action="/checkin/?event=%s" method="post">
  <input name="cpf" placeholder="CPF" />
  <input name="birth_date" placeholder="Nascimento (DD/MM/YYYY)" />
  <input name="name" placeholder="Nome (opcional)" />
  <button>Confirmar</button>
</form>`, eventDate.Format("2006-01-02"), notice, eventDate.Format("2006-01-02"))
		return htmlPage(c, fiber.StatusOK, "Check-in do Evento", body)
	})

	r.Post("/", func(c *fiber.Ctx) error {
		eventDate := eventDateFrom(c)

		_, err := checkins.Submit(c.UserContext(), service.CheckinInput{
			EventDate: eventDate,
			CPF:       c.FormValue("cpf"),
			Name:      c.FormValue("name"),
			BirthDate: c.FormValue("birth_date"),
		})
		if err != nil {
			if msg := checkinErrorMessage(err); msg != "" {
				return c.Redirect(fmt.Sprintf("/checkin/?event=%s&msg=%s", eventDate.Format("2006-01-02"), url.QueryEscape(msg)), fiber.StatusFound)
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Redirect("/checkin/sucesso?event="+eventDate.Format("2006-01-02"), fiber.StatusFound)
	})

	r.Get("/sucesso", func(c *fiber.Ctx) error {
		eventDate := eventDateFrom(c)
		body := fmt.Sprintf(`<h1>✅ Check-in confirmado</h1><p>Evento de <b>%s</b></p><p><a href="/checkin/?event=%s">Novo check-in</a></p>`,
			eventDate.Format("2006-01-02"), eventDate.Format("2006-01-02"))
		return htmlPage(c, fiber.StatusOK, "Check-in confirmado", body)
	})

	r.Get("/lista", func(c *fiber.Ctx) error {
		eventDate := eventDateFrom(c)
		rows, err := checkins.ListByEvent(c.UserContext(), eventDate)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		var table bytes.Buffer
		table.WriteString(`<table border="1" cellpadding="6"><tr><th>CPF</th><th>Nome</th><th>Nascimento</th></tr>`)
		for _, row := range rows {
			fmt.Fprintf(&table, `<tr><td class="mono">%s</td><td>%s</td><td>%s</td></tr>`,
				html.EscapeString(row.CPF), html.EscapeString(row.Name), html.EscapeString(row.BirthDate))
		}
		table.WriteString(`</table>`)

		body := fmt.Sprintf(`<h1>Check-ins de %s</h1>%s`, eventDate.Format("2006-01-02"), table.String())
		return htmlPage(c, fiber.StatusOK, "Check-ins", body)
	})

	r.Get("/csv", func(c *fiber.Ctx) error {
		eventDate := eventDateFrom(c)
		rows, err := checkins.ListByEvent(c.UserContext(), eventDate)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		brt, lerr := time.LoadLocation("America/Sao_Paulo")
		if lerr != nil {
			brt = time.UTC
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Write([]string{"event_date", "cpf", "birth_date", "created_at_brt", "updated_at_brt"})
		for _, row := range rows {
			w.Write([]string{
				row.EventDate.Format("2006-01-02"),
				row.CPF,
				row.BirthDate,
				row.CreatedAt.In(brt).Format("2006-01-02 15:04:05"),
				row.UpdatedAt.In(brt).Format("2006-01-02 15:04:05"),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=checkins_%s.csv`, eventDate.Format("2006-01-02")))
		return c.Send(buf.Bytes())
	})

	// JSON mirror of the form submit for non-browser clients
	r.Post("/api", func(c *fiber.Ctx) error {
		var body struct {
			CPF       string `json:"cpf" validate:"required"`
			BirthDate string `json:"birth_date" validate:"required"`
			Name      string `json:"name"`
			Event     string `json:"event" validate:"omitempty,datetime=2006-01-02"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "invalid JSON body"})
		}
		if err := validate.Struct(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "Informe cpf e birth_date (evento em YYYY-MM-DD)."})
		}

		eventDate := time.Now().UTC().Truncate(24 * time.Hour)
		if body.Event != "" {
			d, err := time.Parse("2006-01-02", body.Event)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "Data do evento inválida (YYYY-MM-DD)."})
			}
			eventDate = d
		}

		res, err := checkins.Submit(c.UserContext(), service.CheckinInput{
			EventDate: eventDate,
			CPF:       body.CPF,
			Name:      body.Name,
			BirthDate: body.BirthDate,
		})
		if err != nil {
			if msg := checkinErrorMessage(err); msg != "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": msg})
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{
			"ok":         true,
			"updated":    res.Updated,
			"event_date": eventDate.Format("2006-01-02"),
			"cpf":        res.Checkin.CPF,
		})
	})
}
