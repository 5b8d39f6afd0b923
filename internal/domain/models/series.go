package models

import "time"

// PeriodTotal is the aggregated value of one entity over one period bucket.
type PeriodTotal struct {
	Bucket time.Time
	Entity string
	Total  float64
}

// Forecast is a continuation of a history series produced by the prediction service.
type Forecast struct {
	Entity      string    `json:"entity"`
	Period      string    `json:"period"`
	Values      []float64 `json:"values"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ForecastRequest asks the prediction service for a continuation of History.
type ForecastRequest struct {
	Entity      string    `json:"entity"`
	Period      string    `json:"period"`
	History     []float64 `json:"history"`
	Horizon     int       `json:"horizon"`
	RequestedAt time.Time `json:"requested_at"`
}

// ForecastReady is published by the prediction service once a forecast is computed.
type ForecastReady struct {
	Entity      string    `json:"entity" validate:"required"`
	Period      string    `json:"period" validate:"required,oneof=day week month"`
	Values      []float64 `json:"values" validate:"required,min=1"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Forecast converts the event into a stored forecast.
func (r ForecastReady) Forecast() Forecast {
	return Forecast{
		Entity:      r.Entity,
		Period:      r.Period,
		Values:      r.Values,
		Model:       r.Model,
		GeneratedAt: r.GeneratedAt,
	}
}
