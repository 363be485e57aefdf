package imports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/logger"
	"household-budget-backend/internal/models"
)

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

// ParseCSV reads date,merchant,amount[,external_id] rows after a header
// line. Malformed rows are skipped and counted.
func ParseCSV(r io.Reader) ([]Row, int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	sample := content[:min(len(content), 1024)]
	if !bytes.Contains(sample, []byte(",")) {
		if bytes.Contains(sample, []byte(";")) {
			reader.Comma = ';'
		} else if bytes.Contains(sample, []byte("\t")) {
			reader.Comma = '\t'
		}
	}

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("empty csv: %w", apperr.ErrInvalidInput)
		}
		return nil, 0, fmt.Errorf("read csv header: %w", apperr.ErrInvalidInput)
	}

	var rows []Row
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(record) == 0 || strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}
		row, ok := parseRecord(record)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parseRecord(record []string) (Row, bool) {
	if len(record) < 3 {
		return Row{}, false
	}
	date, ok := parseDate(strings.TrimSpace(record[0]))
	if !ok {
		return Row{}, false
	}
	merchant := strings.TrimSpace(record[1])
	if merchant == "" {
		return Row{}, false
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return Row{}, false
	}

	row := Row{Merchant: merchant, Amount: amount, TransactionDate: date}
	if len(record) > 3 {
		row.ExternalID = strings.TrimSpace(record[3])
	}
	return row, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ImportCSV parses content and ingests it into batch. Meant to run in the
// background after the upload request has returned.
func (s *Service) ImportCSV(ctx context.Context, batch *models.ImportBatch, content []byte) (*Result, error) {
	rows, skipped, err := ParseCSV(bytes.NewReader(content))
	if err != nil {
		s.fail(ctx, batch, err)
		return nil, err
	}
	if skipped > 0 {
		log := logger.FromContext(ctx)
		log.Warn().
			Str("batch_id", batch.ID.String()).
			Int("skipped_rows", skipped).
			Msg("malformed csv rows skipped")
	}

	res, err := s.Ingest(ctx, batch, rows)
	if err != nil {
		return nil, err
	}
	res.Skipped += skipped
	return res, nil
}
