package analytics

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteAuditCSV writes the filtered record set as a CSV audit trail of
// what the report was computed from.
func WriteAuditCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"data_venda", "mes", "id_cota", "valor", "tem_pagamento", "uf", "segmento"}); err != nil {
		return err
	}
	for _, r := range recs {
		valor := ""
		if r.HasAmount {
			valor = strconv.FormatFloat(r.Amount, 'f', -1, 64)
		}
		pago := "0"
		if r.Paid {
			pago = "1"
		}
		row := []string{
			r.SaleDate.UTC().Format(time.RFC3339),
			r.SaleDate.Format("2006-01"),
			r.CotaID,
			valor,
			pago,
			r.UF,
			r.Segment,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
