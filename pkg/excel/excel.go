// Package excel renders tabular data sources into xlsx workbooks.
package excel

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names are capped by the xlsx format.
const maxSheetName = 31

var ErrTooManyRows = errors.New("export exceeds the configured row limit")

type DataSource interface {
	SheetName() string
	Headers() []string
	Rows(ctx context.Context) ([][]any, error)
}

type ExportOptions struct {
	IncludeHeaders bool
	FreezeHeader   bool
	AutoFilter     bool
	// MaxRows limits data rows; 0 disables the limit.
	MaxRows int
}

type StyleOptions struct {
	HeaderBold  bool
	HeaderColor string
}

func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{
		IncludeHeaders: true,
		FreezeHeader:   true,
		AutoFilter:     true,
	}
}

func DefaultStyleOptions() *StyleOptions {
	return &StyleOptions{
		HeaderBold:  true,
		HeaderColor: "#E0EBF5",
	}
}

type Exporter struct {
	opts  *ExportOptions
	style *StyleOptions
}

func NewExcelExporter(opts *ExportOptions, style *StyleOptions) *Exporter {
	if opts == nil {
		opts = DefaultExportOptions()
	}
	if style == nil {
		style = DefaultStyleOptions()
	}
	return &Exporter{opts: opts, style: style}
}

// Export writes ds into a single-sheet workbook and returns the encoded file.
func (e *Exporter) Export(ctx context.Context, ds DataSource) ([]byte, error) {
	rows, err := ds.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if e.opts.MaxRows > 0 && len(rows) > e.opts.MaxRows {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRows, len(rows), e.opts.MaxRows)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(ds.SheetName())
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := ds.Headers()
	rowNum := 1
	if e.opts.IncludeHeaders && len(headers) > 0 {
		if err := e.writeHeader(f, sheet, headers); err != nil {
			return nil, err
		}
		rowNum++
	}
	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}
		rowNum++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) writeHeader(f *excelize.File, sheet string, headers []string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}

	style := &excelize.Style{Font: &excelize.Font{Bold: e.style.HeaderBold}}
	if e.style.HeaderColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.style.HeaderColor}}
	}
	styleID, err := f.NewStyle(style)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, styleID); err != nil {
		return err
	}

	if e.opts.FreezeHeader {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}
	if e.opts.AutoFilter {
		if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}
	return nil
}

func sheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	if r := []rune(name); len(r) > maxSheetName {
		return string(r[:maxSheetName])
	}
	return name
}

// SliceDataSource serves rows that are already in memory.
type SliceDataSource struct {
	name    string
	headers []string
	rows    [][]any
}

func NewSliceDataSource(headers []string, rows [][]any) *SliceDataSource {
	return &SliceDataSource{headers: headers, rows: rows}
}

func (s *SliceDataSource) WithSheetName(name string) *SliceDataSource {
	s.name = name
	return s
}

func (s *SliceDataSource) SheetName() string { return s.name }
func (s *SliceDataSource) Headers() []string { return s.headers }

func (s *SliceDataSource) Rows(context.Context) ([][]any, error) {
	return s.rows, nil
}
