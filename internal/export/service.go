package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/catalogql/internal/domain"
	"github.com/rpattn/catalogql/internal/engine"
)

// Format names for exported query results.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const sheetName = "Entities"

// Request describes one export: the selection and ordering of the query plus
// the data columns to emit and the output format (csv when empty).
type Request struct {
	Filter *domain.EntityFilter `json:"filter,omitempty"`
	Order  []domain.EntityOrder `json:"order,omitempty"`
	Fields []string             `json:"fields,omitempty"`
	Format string               `json:"format,omitempty"`
}

// Service streams filtered, ordered query results as spreadsheet files. It
// pages through the planner's offset path so exports never materialize the
// whole result set beyond one page.
type Service struct {
	planner  *engine.Planner
	pageSize int
}

type Option func(*Service)

// WithPageSize tunes how many entities are fetched per planner call.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

func NewService(planner *engine.Planner, opts ...Option) *Service {
	service := &Service{
		planner:  planner,
		pageSize: 500,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// ContentInfo returns the content type and download file name for a format.
func (s *Service) ContentInfo(format string) (contentType, fileName string, err error) {
	switch normalizeFormat(format) {
	case FormatCSV:
		return "text/csv", "entities.csv", nil
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "entities.xlsx", nil
	default:
		return "", "", fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidRequest, format)
	}
}

// Export writes the full result set to w and returns the row count.
func (s *Service) Export(ctx context.Context, req Request, w io.Writer) (int, error) {
	switch normalizeFormat(req.Format) {
	case FormatCSV:
		return s.exportCSV(ctx, req, w)
	case FormatXLSX:
		return s.exportXLSX(ctx, req, w)
	default:
		return 0, fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidRequest, req.Format)
	}
}

func (s *Service) exportCSV(ctx context.Context, req Request, w io.Writer) (int, error) {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(headerRow(req.Fields)); err != nil {
		return 0, fmt.Errorf("write header row: %w", err)
	}

	rows := 0
	err := s.forEachEntity(ctx, req, func(entity domain.Entity) error {
		if err := csvWriter.Write(entityRow(entity, req.Fields)); err != nil {
			return fmt.Errorf("write entity row: %w", err)
		}
		rows++
		return nil
	})
	if err != nil {
		return rows, err
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return rows, fmt.Errorf("flush rows: %w", err)
	}
	return rows, nil
}

func (s *Service) exportXLSX(ctx context.Context, req Request, w io.Writer) (int, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	writeRow := func(rowIndex int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIndex)
		if err != nil {
			return fmt.Errorf("compute cell name: %w", err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		return f.SetSheetRow(sheetName, cell, &row)
	}

	if err := writeRow(1, headerRow(req.Fields)); err != nil {
		return 0, fmt.Errorf("write header row: %w", err)
	}

	rows := 0
	err := s.forEachEntity(ctx, req, func(entity domain.Entity) error {
		rows++
		if err := writeRow(rows+1, entityRow(entity, req.Fields)); err != nil {
			return fmt.Errorf("write entity row: %w", err)
		}
		return nil
	})
	if err != nil {
		return rows, err
	}

	if err := f.Write(w); err != nil {
		return rows, fmt.Errorf("write workbook: %w", err)
	}
	return rows, nil
}

// forEachEntity pages through the offset path and invokes fn per entity.
func (s *Service) forEachEntity(ctx context.Context, req Request, fn func(domain.Entity) error) error {
	offset := 0
	for {
		limit := s.pageSize
		resp, err := s.planner.Entities(ctx, engine.EntitiesRequest{
			Filter: req.Filter,
			Order:  req.Order,
			Limit:  &limit,
			Offset: &offset,
		})
		if err != nil {
			return err
		}
		for _, entity := range resp.Entities {
			if err := fn(entity); err != nil {
				return err
			}
		}
		if !resp.PageInfo.HasNextPage {
			return nil
		}
		offset += s.pageSize
	}
}

func headerRow(fields []string) []string {
	header := []string{"uid", "ref", "kind", "namespace", "name"}
	return append(header, fields...)
}

func entityRow(entity domain.Entity, fields []string) []string {
	row := []string{
		entity.UID.String(),
		entity.Ref.String(),
		entity.Ref.Kind,
		entity.Ref.Namespace,
		entity.Ref.Name,
	}
	for _, field := range fields {
		row = append(row, strings.Join(entity.Values(field), "; "))
	}
	return row
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return FormatCSV
	case FormatXLSX:
		return FormatXLSX
	default:
		return "unknown"
	}
}
