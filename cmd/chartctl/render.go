package main

import (
	"bytes"
	"fmt"
	"os"

	"ChartCast/internal/loader"
	"ChartCast/pkg/chart"
	"ChartCast/pkg/draw"

	"github.com/spf13/cobra"
)

type renderFlags struct {
	sheet         string
	format        string
	output        string
	width         float64
	height        float64
	yLabel        string
	xLabel        string
	lineColor     string
	forecastColor string
	paddingFactor float64
}

func newRenderCmd() *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <input.xlsx|input.json>",
		Short: "Render a chart from an XLSX or JSON file",
		Long: `render reads labelled values and lays them out as a line chart.

XLSX input needs a header row with "label" and "value" columns and an optional
"kind" column; rows whose kind is "forecast" form the forecast continuation and
must follow all historical rows. JSON input is {"historical":[...],"forecast":[...]}.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.sheet, "sheet", "", "Worksheet name (default: first sheet)")
	fl.StringVarP(&f.format, "format", "f", "svg", "Output format: svg, png, json")
	fl.StringVarP(&f.output, "output", "o", "", "Output file path (default: stdout)")
	fl.Float64Var(&f.width, "width", chart.DefaultWidth, "Surface width")
	fl.Float64Var(&f.height, "height", chart.DefaultHeight, "Surface height")
	fl.StringVar(&f.yLabel, "y-label", "", "Value axis title")
	fl.StringVar(&f.xLabel, "x-label", "", "Category axis title")
	fl.StringVar(&f.lineColor, "line-color", chart.DefaultLineColor, "Historical line color")
	fl.StringVar(&f.forecastColor, "forecast-color", chart.DefaultForecastLineColor, "Forecast line color")
	fl.Float64Var(&f.paddingFactor, "padding-factor", chart.DefaultPaddingFactor, "Headroom factor above the tallest point (>= 1)")
	return cmd
}

func runRender(cmd *cobra.Command, input string, f *renderFlags) error {
	format, err := draw.ParseFormat(f.format)
	if err != nil {
		return err
	}
	if f.paddingFactor < 1 {
		return fmt.Errorf("padding-factor must be >= 1, got %v", f.paddingFactor)
	}

	in, err := loader.Load(input, f.sheet)
	if err != nil {
		return err
	}

	g := chart.Render(in.Historical, in.Forecast, chart.Options{
		Width:             f.width,
		Height:            f.height,
		PaddingFactor:     f.paddingFactor,
		YAxisLabel:        f.yLabel,
		XAxisLabel:        f.xLabel,
		LineColor:         f.lineColor,
		ForecastLineColor: f.forecastColor,
	})

	var buf bytes.Buffer
	if err := draw.Write(&buf, g, format); err != nil {
		return fmt.Errorf("draw: %w", err)
	}

	if f.output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(f.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d points, %s)\n", f.output, g.PointCount, format)
	return nil
}
