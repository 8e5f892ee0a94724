package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextSender sends an outbound WhatsApp text message. Satisfied by
// *whatsapp.Client; narrowed here so the dispatcher can be tested without
// a live provider.
type TextSender interface {
	SendText(ctx context.Context, to, text string) (json.RawMessage, error)
	Configured() bool
}

// BirthdayItem is one recipient entry from the automation platform.
type BirthdayItem struct {
	Nome       string `json:"nome"`
	Telefone   string `json:"telefone"`
	Nascimento string `json:"nascimento"`
}

// DispatchDetail records the outcome for one item.
type DispatchDetail struct {
	Idx      int             `json:"idx"`
	Status   string          `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Telefone string          `json:"telefone,omitempty"`
	Mensagem string          `json:"mensagem,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// DispatchSummary aggregates outcomes across the batch.
type DispatchSummary struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
}

// DispatchResult is the full outcome of a birthday dispatch run.
type DispatchResult struct {
	Summary DispatchSummary  `json:"summary"`
	Today   map[string]int   `json:"today"`
	DryRun  bool             `json:"dry_run"`
	Details []DispatchDetail `json:"details"`
}

// FelicitacoesService sends birthday greetings to the items whose birthday
// falls on today in America/Sao_Paulo.
type FelicitacoesService interface {
	Dispatch(ctx context.Context, items []BirthdayItem, dryRun bool) *DispatchResult
}

type felicitacoesService struct {
	sender  TextSender
	nowFunc func() time.Time
	loc     *time.Location
}

func NewFelicitacoesService(sender TextSender) FelicitacoesService {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}
	return &felicitacoesService{sender: sender, nowFunc: time.Now, loc: loc}
}

// birthDayMonthLayouts accepted for the nascimento field. Year-less
// formats parse into year 1900/0000; only day and month are used.
var birthDayMonthLayouts = []string{"2006-01-02", "02/01/2006", "02/01", "01-02"}

// parseDayMonth extracts (day, month) from any accepted date form.
func parseDayMonth(s string) (int, time.Month, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	for _, layout := range birthDayMonthLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Day(), d.Month(), true
		}
	}
	return 0, 0, false
}

var titleCaser = cases.Title(language.BrazilianPortuguese)

// composeGreeting builds the congratulation message for a recipient.
func composeGreeting(nome string) string {
	nomeFmt := titleCaser.String(strings.TrimSpace(nome))
	return fmt.Sprintf(
		"🎉 Olá, %s! 🎂\n\nA equipe ADEMICON deseja a você um FELIZ ANIVERSÁRIO! 🎈\nQue seu novo ciclo venha cheio de alegrias, conquistas e sucesso! ✨",
		nomeFmt,
	)
}

func (s *felicitacoesService) Dispatch(ctx context.Context, items []BirthdayItem, dryRun bool) *DispatchResult {
	now := s.nowFunc().In(s.loc)
	res := &DispatchResult{
		Today:   map[string]int{"day": now.Day(), "month": int(now.Month())},
		DryRun:  dryRun,
		Details: make([]DispatchDetail, 0, len(items)),
	}
	res.Summary.Total = len(items)

	for i, item := range items {
		idx := i + 1
		nome := strings.TrimSpace(item.Nome)
		telefone := strings.TrimSpace(item.Telefone)

		if nome == "" || telefone == "" {
			res.Summary.Errors++
			res.Details = append(res.Details, DispatchDetail{Idx: idx, Status: "error", Reason: "faltando nome/telefone"})
			continue
		}

		day, month, ok := parseDayMonth(item.Nascimento)
		if !ok || day != now.Day() || month != now.Month() {
			res.Summary.Skipped++
			res.Details = append(res.Details, DispatchDetail{Idx: idx, Status: "skipped", Reason: "não é aniversário hoje"})
			continue
		}

		texto := composeGreeting(nome)
		if dryRun {
			res.Summary.Sent++
			res.Details = append(res.Details, DispatchDetail{Idx: idx, Status: "ok(dry_run)", Telefone: telefone, Mensagem: texto})
			continue
		}

		out, err := s.sender.SendText(ctx, telefone, texto)
		if err != nil {
			res.Summary.Errors++
			res.Details = append(res.Details, DispatchDetail{Idx: idx, Status: "error", Reason: err.Error()})
			continue
		}
		res.Summary.Sent++
		res.Details = append(res.Details, DispatchDetail{Idx: idx, Status: "ok", Telefone: telefone, Response: out})
	}
	return res
}
