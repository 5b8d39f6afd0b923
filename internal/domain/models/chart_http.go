package models

import "ChartCast/pkg/chart"

// Requests for chart HTTP endpoints. Defined in domain for consistency and reuse.

type ChartRequest struct {
	Entity        string  `query:"entity" json:"entity" validate:"required,max=128"`
	Period        string  `query:"period" json:"period" default:"month" validate:"oneof=day week month"`
	N             int     `query:"n" json:"n" default:"12" validate:"gte=1,lte=400"`
	Horizon       int     `query:"horizon" json:"horizon" validate:"gte=0,lte=60"`
	Format        string  `query:"format" json:"format" default:"json" validate:"oneof=json svg png"`
	Width         float64 `query:"width" json:"width" validate:"omitempty,gte=50,lte=4000"`
	Height        float64 `query:"height" json:"height" validate:"omitempty,gte=50,lte=4000"`
	YLabel        string  `query:"y_label" json:"y_label" validate:"max=64"`
	XLabel        string  `query:"x_label" json:"x_label" validate:"max=64"`
	LineColor     string  `query:"line_color" json:"line_color" validate:"omitempty,hexcolor"`
	ForecastColor string  `query:"forecast_color" json:"forecast_color" validate:"omitempty,hexcolor"`
}

type RenderRequest struct {
	Historical chart.Series  `json:"historical" validate:"max=1000,dive"`
	Forecast   chart.Series  `json:"forecast" validate:"max=1000,dive"`
	Options    chart.Options `json:"options"`
	Format     string        `json:"format" default:"json" validate:"oneof=json svg png"`
}

// ChartPayload is the JSON body returned for format=json.
type ChartPayload struct {
	Entity   string         `json:"entity,omitempty"`
	Period   string         `json:"period,omitempty"`
	Forecast string         `json:"forecast_status,omitempty"`
	Model    string         `json:"model,omitempty"`
	Geometry chart.Geometry `json:"geometry"`
}
