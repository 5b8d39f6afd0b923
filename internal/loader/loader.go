// Package loader reads chart series from spreadsheet or JSON files.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"ChartCast/pkg/chart"
	"ChartCast/pkg/util"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedInput = errors.New("unsupported input file")
	ErrMissingColumn    = errors.New("missing column")
	ErrForecastOrder    = errors.New("historical row after forecast rows")
)

// kindForecast marks a spreadsheet row as part of the forecast.
const kindForecast = "forecast"

// Input is a pair of series ready for rendering.
type Input struct {
	Historical chart.Series `json:"historical"`
	Forecast   chart.Series `json:"forecast"`
}

// Load reads path as XLSX or JSON depending on its extension. sheet is
// only used for spreadsheets; empty selects the first sheet.
func Load(path, sheet string) (Input, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, sheet)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return Input{}, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		return ReadJSON(f)
	default:
		return Input{}, fmt.Errorf("%w: %s", ErrUnsupportedInput, path)
	}
}

// ReadJSON decodes {"historical": [...], "forecast": [...]}.
func ReadJSON(r io.Reader) (Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Input{}, fmt.Errorf("decode json input: %w", err)
	}
	return in, nil
}

// LoadXLSX reads label/value rows with an optional kind column. The first
// row is the header; blank rows are skipped.
func LoadXLSX(path, sheet string) (Input, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Input{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) (Input, error) {
	var in Input
	if len(rows) == 0 {
		return in, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	labelCol, ok := cols["label"]
	if !ok {
		return in, fmt.Errorf("%w: label", ErrMissingColumn)
	}
	valueCol, ok := cols["value"]
	if !ok {
		return in, fmt.Errorf("%w: value", ErrMissingColumn)
	}
	kindCol, hasKind := cols["kind"]

	for i, row := range rows[1:] {
		line := i + 2
		label, raw := cell(row, labelCol), cell(row, valueCol)
		if label == "" && raw == "" {
			continue
		}
		v, err := util.ParseFloat(raw)
		if err != nil {
			return Input{}, fmt.Errorf("row %d: value %q: %w", line, raw, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Input{}, fmt.Errorf("row %d: value %q is not finite", line, raw)
		}
		o := chart.Observation{Label: label, Value: v}

		if hasKind && strings.EqualFold(cell(row, kindCol), kindForecast) {
			in.Forecast = append(in.Forecast, o)
			continue
		}
		if len(in.Forecast) > 0 {
			return Input{}, fmt.Errorf("row %d: %w", line, ErrForecastOrder)
		}
		in.Historical = append(in.Historical, o)
	}
	return in, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
