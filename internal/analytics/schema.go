// Package analytics turns untyped sales-feed rows from the Workato
// automation into the monthly/YTD/regional production report.
package analytics

import "strings"

// Column identifies a canonical feed column. Incoming header names are
// resolved to these once at ingestion instead of being re-matched
// dynamically per access.
type Column int

const (
	ColUnknown Column = iota
	ColBirthYear
	ColState
	ColCity
	ColSaleDate
	ColAmount
	ColCotaID
	ColPaid
	ColSegment
)

// Canonical display names as exported by the automation platform.
// The arrow separator comes from the upstream tool's relation syntax.
const (
	nameBirthYear = "Ano Nascimento"
	nameState     = "Uf Cliente"
	nameCity      = "Cidade"
	nameSaleDate  = "Cotas Id Cliente → Data Venda"
	nameAmount    = "Cotas Id Cliente → Valor Credito Venda"
	nameCotaID    = "Cotas Id Cliente → Id Cota"
	namePaid      = "Cotas Id Cliente → Tem Pagamento"
	nameSegment   = "Cotas Id Cliente → Segmento"
)

// schema maps every accepted header spelling (canonical display names plus
// snake_case aliases) to its Column.
var schema = map[string]Column{
	nameBirthYear: ColBirthYear,
	nameState:     ColState,
	nameCity:      ColCity,
	nameSaleDate:  ColSaleDate,
	nameAmount:    ColAmount,
	nameCotaID:    ColCotaID,
	namePaid:      ColPaid,
	nameSegment:   ColSegment,

	"ano_nascimento":      ColBirthYear,
	"uf_cliente":          ColState,
	"cidade":              ColCity,
	"data_venda":          ColSaleDate,
	"valor_credito_venda": ColAmount,
	"id_cota":             ColCotaID,
	"tem_pagamento":       ColPaid,
	"segmento":            ColSegment,
}

// columnName returns the canonical display name used in error messages.
func columnName(c Column) string {
	switch c {
	case ColBirthYear:
		return nameBirthYear
	case ColState:
		return nameState
	case ColCity:
		return nameCity
	case ColSaleDate:
		return nameSaleDate
	case ColAmount:
		return nameAmount
	case ColCotaID:
		return nameCotaID
	case ColPaid:
		return namePaid
	case ColSegment:
		return nameSegment
	}
	return "?"
}

// normalizeHeader folds a raw header into its comparable form: the ASCII
// "->" becomes the arrow used by the platform and runs of whitespace
// collapse to single spaces.
func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "->", "→")
	return strings.Join(strings.Fields(h), " ")
}

// resolveColumn maps a raw header name to its canonical Column, or
// ColUnknown when the header is not part of the schema.
func resolveColumn(h string) Column {
	if c, ok := schema[normalizeHeader(h)]; ok {
		return c
	}
	return ColUnknown
}

// resolveHeaders builds the header→Column mapping for a dataset from the
// union of row keys. It is computed once per ingestion.
func resolveHeaders(rows []map[string]any) map[string]Column {
	m := make(map[string]Column)
	for _, row := range rows {
		for k := range row {
			if _, seen := m[k]; seen {
				continue
			}
			m[k] = resolveColumn(k)
		}
	}
	return m
}
