package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cellRef, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "series.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"Label", "Value", "Kind"},
		{"Jan", 10, ""},
		{"Feb", "1,020.5", "actual"},
		{},
		{"Mar", 15, "forecast"},
		{"Apr", 18.25, "Forecast"},
	})

	in, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(in.Historical) != 2 || len(in.Forecast) != 2 {
		t.Fatalf("historical=%d forecast=%d", len(in.Historical), len(in.Forecast))
	}
	if in.Historical[1].Value != 1020.5 || in.Forecast[1].Label != "Apr" || in.Forecast[1].Value != 18.25 {
		t.Fatalf("parsed = %+v", in)
	}
}

func TestLoadXLSXNamedSheetWithoutKind(t *testing.T) {
	path := writeWorkbook(t, "Sales", [][]interface{}{
		{"value", "label"},
		{3, "a"},
		{4, "b"},
	})
	in, err := LoadXLSX(path, "Sales")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(in.Historical) != 2 || in.Historical[0].Label != "a" || in.Forecast != nil {
		t.Fatalf("parsed = %+v", in)
	}
}

func TestLoadXLSXErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]interface{}
		want error
	}{
		{"no value column", [][]interface{}{{"label"}, {"a"}}, ErrMissingColumn},
		{"history after forecast", [][]interface{}{
			{"label", "value", "kind"},
			{"a", 1, "forecast"},
			{"b", 2, ""},
		}, ErrForecastOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadXLSX(writeWorkbook(t, "Sheet1", tt.rows), "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	path := writeWorkbook(t, "Sheet1", [][]interface{}{{"label", "value"}, {"a", "lots"}})
	if _, err := LoadXLSX(path, ""); err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("err = %v", err)
	}
}

func TestReadJSON(t *testing.T) {
	in, err := ReadJSON(strings.NewReader(`{"historical":[{"label":"a","value":1}],"forecast":[{"label":"b","value":2}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Historical) != 1 || in.Forecast[0].Value != 2 {
		t.Fatalf("parsed = %+v", in)
	}
	if _, err := ReadJSON(strings.NewReader(`[`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "in.json")
	if err := os.WriteFile(p, []byte(`{"historical":[{"label":"a","value":1}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if in, err := Load(p, ""); err != nil || len(in.Historical) != 1 {
		t.Fatalf("json load: %+v %v", in, err)
	}
	if _, err := Load(filepath.Join(dir, "in.csv"), ""); !errors.Is(err, ErrUnsupportedInput) {
		t.Fatalf("err = %v", err)
	}
}
