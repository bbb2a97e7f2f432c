package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(label string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(label))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json, csv or xlsx)", label)
	}
}

// Export writes a view-model to w in the given format.
func Export(w io.Writer, format Format, model any) error {
	if format == FormatJSON {
		return WriteJSON(w, model)
	}

	tables, err := Tables(model)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		return WriteCSV(w, tables)
	case FormatXLSX:
		return WriteXLSX(w, tables)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteJSON writes the model with its chart datasets.
func WriteJSON(w io.Writer, model any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	payload := struct {
		Model  any     `json:"model"`
		Charts []Chart `json:"charts,omitempty"`
	}{Model: model, Charts: Charts(model)}
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	return nil
}

// WriteCSV writes every table as a "# name" line, its header and rows,
// separated by blank lines.
func WriteCSV(w io.Writer, tables []Table) error {
	cw := csv.NewWriter(w)
	for i, t := range tables {
		if i > 0 {
			if err := cw.Write(nil); err != nil {
				return fmt.Errorf("failed to write csv separator: %w", err)
			}
		}
		if err := cw.Write([]string{"# " + t.Name}); err != nil {
			return fmt.Errorf("failed to write csv section %s: %w", t.Name, err)
		}
		if err := cw.Write(t.Header); err != nil {
			return fmt.Errorf("failed to write csv header of %s: %w", t.Name, err)
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return fmt.Errorf("failed to write csv rows of %s: %w", t.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes one sheet per table with a bold header row.
func WriteXLSX(w io.Writer, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, t := range tables {
		// The first table takes over the sheet every new workbook starts with.
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", t.Name, err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Name, err)
		}

		if err := writeSheetRow(f, t.Name, 1, t.Header); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(max(len(t.Header), 1))
		if err := f.SetCellStyle(t.Name, "A1", lastCol+"1", headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", t.Name, err)
		}
		for r, row := range t.Rows {
			if err := writeSheetRow(f, t.Name, r+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx report: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
