// Package importer loads collected coupon codes onto customer profiles from
// a CSV file with customer_id and code columns.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

// CustomerWriter reads and updates customers through the Admin API.
type CustomerWriter interface {
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
	UpdateCustomerMetadata(ctx context.Context, customerID string, metadata map[string]interface{}) (*domain.Customer, error)
}

// CSVImporter reads coupon rows and appends each code to the customer's
// collected list, skipping codes the customer already holds.
type CSVImporter struct {
	reader    *csv.Reader
	customers CustomerWriter
	dryRun    bool
	logger    *zap.Logger
}

func NewCSVImporter(r io.Reader, customers CustomerWriter, dryRun bool, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:    csvr,
		customers: customers,
		dryRun:    dryRun,
		logger:    logging.OrNop(logger),
	}
}

// Stats summarises an import run.
type Stats struct {
	Rows      int
	Customers int
	Added     int
	Skipped   int
}

type grant struct {
	customerID string
	codes      []string
}

// Run parses every row first, then updates customers in file order with one
// write per customer.
func (i *CSVImporter) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	grants, rows, err := i.read()
	stats.Rows = rows
	if err != nil {
		return stats, err
	}

	for _, g := range grants {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		added, skipped, err := i.apply(ctx, g)
		if err != nil {
			return stats, err
		}
		stats.Customers++
		stats.Added += added
		stats.Skipped += skipped
	}
	return stats, nil
}

func (i *CSVImporter) read() ([]grant, int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"customer_id", "code"} {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", col)
		}
	}

	var (
		grants []grant
		byID   = map[string]int{}
		rows   int
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rows, fmt.Errorf("read row: %w", err)
		}
		rows++
		customerID := pick(record, index, "customer_id")
		code := domain.TrimCode(pick(record, index, "code"))
		if customerID == "" && code == "" {
			continue
		}
		if customerID == "" || code == "" {
			return nil, rows, fmt.Errorf("row %d: customer_id and code are required", rows)
		}
		pos, ok := byID[customerID]
		if !ok {
			pos = len(grants)
			byID[customerID] = pos
			grants = append(grants, grant{customerID: customerID})
		}
		grants[pos].codes = append(grants[pos].codes, code)
	}
	return grants, rows, nil
}

func (i *CSVImporter) apply(ctx context.Context, g grant) (int, int, error) {
	customer, err := i.customers.GetCustomer(ctx, g.customerID)
	if err != nil {
		return 0, 0, fmt.Errorf("load customer %s: %w", g.customerID, err)
	}

	var added, skipped int
	for _, code := range g.codes {
		metadata, ok := customer.WithCoupon(code)
		if !ok {
			skipped++
			continue
		}
		customer.Metadata = metadata
		added++
	}
	if added == 0 {
		return 0, skipped, nil
	}

	log := i.logger.With(zap.String("customer_id", g.customerID), zap.Int("added", added))
	if i.dryRun {
		log.Info("dry run: would update collected coupons")
		return added, skipped, nil
	}
	if _, err := i.customers.UpdateCustomerMetadata(ctx, g.customerID, customer.Metadata); err != nil {
		return 0, skipped, fmt.Errorf("update customer %s: %w", g.customerID, err)
	}
	log.Info("collected coupons updated")
	return added, skipped, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
