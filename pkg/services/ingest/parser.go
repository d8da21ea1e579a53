package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/services/timeframe"
)

// remittance CSV columns. claim_id and service_date are mandatory; the rest
// default to zero values when the export omits them.
var requiredColumns = []string{"claim_id", "service_date"}

type columnIndex map[string]int

func (c columnIndex) field(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRemittance reads a remittance CSV stream into claim records. Rows that
// cannot be parsed are counted and dropped rather than failing the file.
func parseRemittance(r io.Reader) ([]store.ClaimRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	columns := columnIndex{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", name)
		}
	}

	var records []store.ClaimRecord
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		record, err := parseRow(columns, row)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped, nil
}

func parseRow(columns columnIndex, row []string) (store.ClaimRecord, error) {
	claimID := columns.field(row, "claim_id")
	if claimID == "" {
		return store.ClaimRecord{}, fmt.Errorf("claim_id is empty")
	}

	serviceDate, err := time.Parse(timeframe.DateLayout, columns.field(row, "service_date"))
	if err != nil {
		return store.ClaimRecord{}, fmt.Errorf("parse service_date: %w", err)
	}

	record := store.ClaimRecord{
		ClaimID:       claimID,
		ProgramID:     columns.field(row, "program_id"),
		PayerID:       columns.field(row, "payer_id"),
		FacilityID:    columns.field(row, "facility_id"),
		ServiceTypeID: columns.field(row, "service_type_id"),
		ServiceDate:   serviceDate,
		DenialReason:  columns.field(row, "denial_reason"),
		Status:        columns.field(row, "status"),
	}

	amounts := []struct {
		name   string
		target *float64
	}{
		{"billed_amount", &record.BilledAmount},
		{"allowed_amount", &record.AllowedAmount},
		{"paid_amount", &record.PaidAmount},
		{"adjustment_amount", &record.AdjustmentAmount},
	}
	for _, amount := range amounts {
		value := columns.field(row, amount.name)
		if value == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return store.ClaimRecord{}, fmt.Errorf("parse %s: %w", amount.name, err)
		}
		*amount.target = parsed
	}

	if value := columns.field(row, "denied"); value != "" {
		denied, err := strconv.ParseBool(value)
		if err != nil {
			return store.ClaimRecord{}, fmt.Errorf("parse denied: %w", err)
		}
		record.Denied = denied
	}
	if record.Status == string(domain.ClaimStatusDenied) {
		record.Denied = true
	}

	if value := columns.field(row, "processing_days"); value != "" {
		days, err := strconv.Atoi(value)
		if err != nil {
			return store.ClaimRecord{}, fmt.Errorf("parse processing_days: %w", err)
		}
		record.ProcessingDays = days
	}

	return record, nil
}
