package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Options configure a report computation. They come from configuration and
// request parameters, never from globals.
type Options struct {
	// PeriodStart excludes sales before this instant (YTD window start).
	PeriodStart time.Time
	// Dedup keeps only the most recent sale per cota ID.
	Dedup bool
	// Now is the reference instant for the "current month" breakdown.
	Now time.Time
	// Location is the timezone the current month is evaluated in.
	Location *time.Location
}

// Record is one normalized feed row.
type Record struct {
	SaleDate  time.Time
	HasDate   bool
	Amount    float64
	HasAmount bool
	CotaID    string
	Paid      bool
	UF        string
	Segment   string
}

// Feed is the normalized dataset handed to Compute and to the audit dump.
type Feed struct {
	Records    []Record
	HasSegment bool
}

// MissingColumnsError reports required canonical columns absent from the
// ingested rows.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing: %s", strings.Join(e.Columns, ", "))
}

// MonthlyRow is one month's sales/production aggregate.
type MonthlyRow struct {
	Mes         string   `json:"mes"`
	VendaRS     *float64 `json:"venda_rs"`
	VendaQtde   int      `json:"venda_qtde"`
	ProdRS      *float64 `json:"prod_rs"`
	ProdQtde    int      `json:"prod_qtde"`
	ConvRSPct   *float64 `json:"conv_rs_pct"`
	ConvQtdePct *float64 `json:"conv_qtde_pct"`
	TicketMedio *float64 `json:"ticket_medio"`
	VendaRSM    *float64 `json:"venda_rs_m"`
	ProdRSM     *float64 `json:"prod_rs_m"`
}

// YTD holds the year-to-date totals since the period start.
type YTD struct {
	VendaRS     *float64 `json:"venda_rs"`
	VendaQtde   int      `json:"venda_qtde"`
	ProdRS      *float64 `json:"prod_rs"`
	ProdQtde    int      `json:"prod_qtde"`
	ConvRSPct   *float64 `json:"conv_rs_pct"`
	ConvQtdePct *float64 `json:"conv_qtde_pct"`
	VendaRSM    *float64 `json:"venda_rs_m"`
	ProdRSM     *float64 `json:"prod_rs_m"`
}

// UFRow is the paid-cota aggregate for one state.
type UFRow struct {
	UF             string   `json:"uf"`
	CotasPagasQtde int      `json:"cotas_pagas_qtde"`
	CotasPagasRS   *float64 `json:"cotas_pagas_rs"`
	CotasPagasRSM  *float64 `json:"cotas_pagas_rs_m,omitempty"`
}

// UFMesCorrente is the per-state breakdown restricted to the current month.
type UFMesCorrente struct {
	Mes   string  `json:"mes"`
	Dados []UFRow `json:"dados"`
}

// SegmentoMesRow is the paid-cota aggregate for one (month, segment) pair.
type SegmentoMesRow struct {
	Mes      string   `json:"mes"`
	Segmento string   `json:"segmento"`
	Qtde     int      `json:"qtde"`
	RS       *float64 `json:"rs"`
	RSM      *float64 `json:"rs_m"`
}

// Report is the full aggregation payload.
type Report struct {
	Status                     string           `json:"status"`
	PeriodStartUTC             string           `json:"period_start_utc"`
	YTD                        YTD              `json:"ytd"`
	Monthly                    []MonthlyRow     `json:"monthly"`
	CotasPagasPorUF            []UFRow          `json:"cotas_pagas_por_uf"`
	CotasPagasPorUFMesCorrente UFMesCorrente    `json:"cotas_pagas_por_uf_mes_corrente"`
	CotasPagasPorSegmentoMes   []SegmentoMesRow `json:"cotas_pagas_por_segmento_mes"`
}

// requiredColumns must all be present in the ingested headers.
var requiredColumns = []Column{ColSaleDate, ColAmount, ColPaid, ColState, ColCotaID}

// Normalize resolves headers once and parses every row into a Record.
// Rows with unparseable dates or amounts are kept with the corresponding
// "has" flag unset; nothing aborts the ingestion except missing required
// columns.
func Normalize(rows []map[string]any) (*Feed, error) {
	headers := resolveHeaders(rows)

	present := make(map[Column]bool)
	for _, c := range headers {
		present[c] = true
	}
	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, columnName(c))
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	feed := &Feed{
		Records:    make([]Record, 0, len(rows)),
		HasSegment: present[ColSegment],
	}
	for _, row := range rows {
		var rec Record
		for k, v := range row {
			switch headers[k] {
			case ColSaleDate:
				rec.SaleDate, rec.HasDate = parseSaleDate(v)
			case ColAmount:
				rec.Amount, rec.HasAmount = parseAmount(v)
			case ColCotaID:
				rec.CotaID = asString(v)
			case ColPaid:
				rec.Paid = isPaid(v)
			case ColState:
				rec.UF = asString(v)
			case ColSegment:
				rec.Segment = asString(v)
			}
		}
		feed.Records = append(feed.Records, rec)
	}
	return feed, nil
}

// filterAndDedup applies the period-start cut and the optional
// keep-most-recent-per-cota deduplication. Ties on sale date keep the
// later occurrence in input order.
func filterAndDedup(recs []Record, opts Options) []Record {
	kept := make([]Record, 0, len(recs))
	for _, r := range recs {
		if !r.HasDate || r.SaleDate.Before(opts.PeriodStart) {
			continue
		}
		kept = append(kept, r)
	}
	if !opts.Dedup {
		return kept
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].SaleDate.Before(kept[j].SaleDate)
	})
	last := make(map[string]int, len(kept))
	for i, r := range kept {
		last[r.CotaID] = i
	}
	out := make([]Record, 0, len(last))
	for i, r := range kept {
		if last[r.CotaID] == i {
			out = append(out, r)
		}
	}
	return out
}

type bucket struct {
	amount float64
	count  int
	cotas  map[string]struct{}
}

func (b *bucket) add(r Record) {
	if b.cotas == nil {
		b.cotas = make(map[string]struct{})
	}
	if r.HasAmount {
		b.amount += r.Amount
	}
	b.count++
	b.cotas[r.CotaID] = struct{}{}
}

// qtde is the unit count for the bucket: distinct cota IDs under dedup,
// plain row count otherwise.
func (b *bucket) qtde(dedup bool) int {
	if b == nil {
		return 0
	}
	if dedup {
		return len(b.cotas)
	}
	return b.count
}

func (b *bucket) sum() float64 {
	if b == nil {
		return 0
	}
	return b.amount
}

// safeDiv returns a/b, or nil when b is zero.
func safeDiv(a, b float64) *float64 {
	if b == 0 {
		return nil
	}
	v := a / b
	return &v
}

// Round maps a float to its JSON-safe rounded form: NaN and ±Inf become
// nil so the payload stays valid JSON.
func Round(x float64, nd int) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	p := math.Pow10(nd)
	v := math.Round(x*p) / p
	return &v
}

func roundPtr(x *float64, nd int) *float64 {
	if x == nil {
		return nil
	}
	return Round(*x, nd)
}

func millions(x float64) float64 {
	return x / 1_000_000
}

// Compute aggregates the normalized feed into the report. Pure function of
// its inputs; no side effects.
func Compute(feed *Feed, opts Options) *Report {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	mesRef := now.In(loc).Format("2006-01")

	recs := filterAndDedup(feed.Records, opts)

	vendas := make(map[string]*bucket)
	producao := make(map[string]*bucket)
	porUF := make(map[string]*bucket)
	porUFMes := make(map[string]*bucket)
	porSegMes := make(map[[2]string]*bucket)

	var ytdVendas, ytdProducao bucket

	for _, r := range recs {
		mes := r.SaleDate.Format("2006-01")
		if vendas[mes] == nil {
			vendas[mes] = &bucket{}
		}
		vendas[mes].add(r)
		ytdVendas.add(r)

		if !r.Paid {
			continue
		}
		if producao[mes] == nil {
			producao[mes] = &bucket{}
		}
		producao[mes].add(r)
		ytdProducao.add(r)

		if porUF[r.UF] == nil {
			porUF[r.UF] = &bucket{}
		}
		porUF[r.UF].add(r)
		if mes == mesRef {
			if porUFMes[r.UF] == nil {
				porUFMes[r.UF] = &bucket{}
			}
			porUFMes[r.UF].add(r)
		}
		if feed.HasSegment {
			key := [2]string{mes, r.Segment}
			if porSegMes[key] == nil {
				porSegMes[key] = &bucket{}
			}
			porSegMes[key].add(r)
		}
	}

	months := make([]string, 0, len(vendas))
	for m := range vendas {
		months = append(months, m)
	}
	sort.Strings(months)

	monthly := make([]MonthlyRow, 0, len(months))
	for _, mes := range months {
		v := vendas[mes]
		p := producao[mes]
		vendaRS, vendaQ := v.sum(), v.qtde(opts.Dedup)
		prodRS, prodQ := p.sum(), p.qtde(opts.Dedup)
		monthly = append(monthly, MonthlyRow{
			Mes:         mes,
			VendaRS:     Round(vendaRS, 2),
			VendaQtde:   vendaQ,
			ProdRS:      Round(prodRS, 2),
			ProdQtde:    prodQ,
			ConvRSPct:   roundPtr(safeDiv(prodRS, vendaRS), 6),
			ConvQtdePct: roundPtr(safeDiv(float64(prodQ), float64(vendaQ)), 6),
			TicketMedio: roundPtr(safeDiv(prodRS, float64(prodQ)), 2),
			VendaRSM:    Round(millions(vendaRS), 6),
			ProdRSM:     Round(millions(prodRS), 6),
		})
	}

	ytdVendaRS, ytdVendaQ := ytdVendas.sum(), ytdVendas.qtde(opts.Dedup)
	ytdProdRS, ytdProdQ := ytdProducao.sum(), ytdProducao.qtde(opts.Dedup)
	zero := 0.0
	ytd := YTD{
		VendaRS:     Round(ytdVendaRS, 2),
		VendaQtde:   ytdVendaQ,
		ProdRS:      Round(ytdProdRS, 2),
		ProdQtde:    ytdProdQ,
		ConvRSPct:   roundPtr(safeDiv(ytdProdRS, ytdVendaRS), 6),
		ConvQtdePct: roundPtr(safeDiv(float64(ytdProdQ), float64(ytdVendaQ)), 6),
		VendaRSM:    &zero,
		ProdRSM:     &zero,
	}
	if ytdVendaRS != 0 {
		ytd.VendaRSM = Round(millions(ytdVendaRS), 6)
	}
	if ytdProdRS != 0 {
		ytd.ProdRSM = Round(millions(ytdProdRS), 6)
	}

	ufs := make([]string, 0, len(porUF))
	for uf := range porUF {
		ufs = append(ufs, uf)
	}
	sort.Strings(ufs)
	ufList := make([]UFRow, 0, len(ufs))
	for _, uf := range ufs {
		b := porUF[uf]
		ufList = append(ufList, UFRow{
			UF:             uf,
			CotasPagasQtde: b.qtde(opts.Dedup),
			CotasPagasRS:   Round(b.sum(), 2),
			CotasPagasRSM:  Round(millions(b.sum()), 6),
		})
	}

	ufMes := make([]string, 0, len(porUFMes))
	for uf := range porUFMes {
		ufMes = append(ufMes, uf)
	}
	sort.Strings(ufMes)
	ufMesList := make([]UFRow, 0, len(ufMes))
	for _, uf := range ufMes {
		b := porUFMes[uf]
		ufMesList = append(ufMesList, UFRow{
			UF:             uf,
			CotasPagasQtde: b.qtde(opts.Dedup),
			CotasPagasRS:   Round(b.sum(), 2),
		})
	}

	segKeys := make([][2]string, 0, len(porSegMes))
	for k := range porSegMes {
		segKeys = append(segKeys, k)
	}
	sort.Slice(segKeys, func(i, j int) bool {
		if segKeys[i][0] != segKeys[j][0] {
			return segKeys[i][0] < segKeys[j][0]
		}
		return segKeys[i][1] < segKeys[j][1]
	})
	segList := make([]SegmentoMesRow, 0, len(segKeys))
	for _, k := range segKeys {
		b := porSegMes[k]
		segList = append(segList, SegmentoMesRow{
			Mes:      k[0],
			Segmento: k[1],
			Qtde:     b.qtde(opts.Dedup),
			RS:       Round(b.sum(), 2),
			RSM:      Round(millions(b.sum()), 6),
		})
	}

	return &Report{
		Status:                     "ok",
		PeriodStartUTC:             opts.PeriodStart.UTC().Format(time.RFC3339),
		YTD:                        ytd,
		Monthly:                    monthly,
		CotasPagasPorUF:            ufList,
		CotasPagasPorUFMesCorrente: UFMesCorrente{Mes: mesRef, Dados: ufMesList},
		CotasPagasPorSegmentoMes:   segList,
	}
}

// BuildReport normalizes the raw rows and computes the report, returning
// the filtered record set used so callers can archive it.
func BuildReport(rows []map[string]any, opts Options) (*Report, []Record, error) {
	feed, err := Normalize(rows)
	if err != nil {
		return nil, nil, err
	}
	report := Compute(feed, opts)
	return report, filterAndDedup(feed.Records, opts), nil
}
