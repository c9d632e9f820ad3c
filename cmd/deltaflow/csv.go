package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"deltaflow/internal/table"
)

// loadCSV reads a CSV file whose first column is an integer row index and
// whose remaining columns are data columns, inferring each column's dtype
// as the first of int64, float64, bool that every non-empty cell parses
// as, else string. This is CLI convenience glue only — not part of the spec's
// normative data model.
func loadCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: empty csv", path)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: expected an index column plus at least one data column", path)
	}
	colNames := header[1:]

	rows := records[1:]
	rowLabels := make([]int64, 0, len(rows))
	raw := make([][]string, len(colNames))
	for _, row := range rows {
		label, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid row index %q: %w", path, row[0], err)
		}
		rowLabels = append(rowLabels, label)
		for i := range colNames {
			raw[i] = append(raw[i], row[i+1])
		}
	}

	cols := make([]table.Column, len(colNames))
	for i, name := range colNames {
		cols[i] = inferColumn(name, raw[i])
	}

	return table.New(rowLabels, cols)
}

func inferColumn(name string, values []string) table.Column {
	dtype := table.Int64
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			continue
		}
		dtype = table.Float64
		break
	}
	if dtype == table.Int64 {
		cells := make([]table.Cell, len(values))
		for i, v := range values {
			if v == "" {
				cells[i] = table.NullCell(table.Int64)
				continue
			}
			n, _ := strconv.ParseInt(v, 10, 64)
			cells[i] = table.IntCell(n)
		}
		return table.Column{Label: name, DType: table.Int64, Cells: cells}
	}

	allFloat := true
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloat = false
			break
		}
	}
	if allFloat {
		cells := make([]table.Cell, len(values))
		for i, v := range values {
			if v == "" {
				cells[i] = table.NullCell(table.Float64)
				continue
			}
			f, _ := strconv.ParseFloat(v, 64)
			cells[i] = table.FloatCell(f)
		}
		return table.Column{Label: name, DType: table.Float64, Cells: cells}
	}

	allBool := true
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseBool(v); err != nil {
			allBool = false
			break
		}
	}
	if allBool {
		cells := make([]table.Cell, len(values))
		for i, v := range values {
			if v == "" {
				cells[i] = table.NullCell(table.Bool)
				continue
			}
			b, _ := strconv.ParseBool(v)
			cells[i] = table.BoolCell(b)
		}
		return table.Column{Label: name, DType: table.Bool, Cells: cells}
	}

	cells := make([]table.Cell, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = table.NullCell(table.String)
			continue
		}
		cells[i] = table.StringCell(v)
	}
	return table.Column{Label: name, DType: table.String, Cells: cells}
}
