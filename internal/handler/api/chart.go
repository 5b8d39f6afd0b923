package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	models "ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
	"ChartCast/internal/service/metrics"
	"ChartCast/internal/usecase"
	"ChartCast/pkg/chart"
	"ChartCast/pkg/draw"
	xhttp "ChartCast/pkg/http"
	"ChartCast/pkg/http/middleware"
	xlogger "ChartCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(key string) bool
}

// ChartHandler serves chart geometry as JSON, SVG or PNG, and as a live stream.
type ChartHandler struct {
	logger  *xlogger.Logger
	uc      *usecase.ChartUseCase
	hub     *usecase.Hub
	history domrepo.HistoryStore
	limiter Limiter
	ep      *metrics.Endpoint
	stream  StreamConfig
}

func NewChartHandler(
	logger *xlogger.Logger,
	uc *usecase.ChartUseCase,
	hub *usecase.Hub,
	history domrepo.HistoryStore,
	limiter Limiter,
	ep *metrics.Endpoint,
	stream StreamConfig,
) *ChartHandler {
	return &ChartHandler{
		logger:  logger,
		uc:      uc,
		hub:     hub,
		history: history,
		limiter: limiter,
		ep:      ep,
		stream:  stream.withDefaults(),
	}
}

func (h *ChartHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api/chart")
	if h.limiter != nil {
		g.Use(middleware.RateLimit(xhttp.ClientKey, h.limiter.Allow))
	}
	g.GET("", h.observed("chart", h.Chart))
	g.POST("/render", h.observed("render", h.Render))
	g.GET("/stream", h.Stream)
}

// Chart renders the latest periods of an entity with its forecast.
func (h *ChartHandler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Render(c.Request().Context(), chartParams(c, req))
	if err != nil {
		return h.renderError(c, err)
	}
	return h.write(c, req.Format, res.Payload())
}

// Render lays out caller-supplied series.
func (h *ChartHandler) Render(c echo.Context) error {
	req := &models.RenderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := req.Options.CheckFit(); err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_PADDING",
			Field:   "padding",
			Message: err.Error(),
		}})
	}
	g := h.uc.RenderSeries(req.Historical, req.Forecast, req.Options, req.Format)
	return h.write(c, req.Format, models.ChartPayload{Geometry: g})
}

// Health checks the history backend.
func (h *ChartHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.history.Health(ctx); err != nil {
		h.logger.Warn("history health check failed", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, xhttp.HealthStatus{
			Status: "unavailable",
			Checks: map[string]string{"history": err.Error()},
		})
	}
	return xhttp.SuccessResponse(c, xhttp.HealthStatus{
		Status: "ok",
		Checks: map[string]string{"history": "ok"},
	})
}

func (h *ChartHandler) write(c echo.Context, format string, payload models.ChartPayload) error {
	f, err := draw.ParseFormat(format)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithParam("format", format))
	}
	if f == draw.FormatJSON {
		return xhttp.SuccessResponse(c, payload)
	}

	var buf bytes.Buffer
	if err := draw.Write(&buf, payload.Geometry, f); err != nil {
		h.logger.Error("draw failed", xlogger.String("format", string(f)), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not draw chart").WithError(err))
	}
	if payload.Forecast != "" {
		c.Response().Header().Set("X-Forecast-Status", payload.Forecast)
	}
	return xhttp.BlobResponse(c, f.ContentType(), buf.Bytes())
}

func (h *ChartHandler) renderError(c echo.Context, err error) error {
	if errors.Is(err, usecase.ErrInvalidParams) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	h.logger.Error("chart usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.UnavailableError("history unavailable").WithError(err))
}

// observed records latency and failures for one endpoint.
func (h *ChartHandler) observed(name string, next echo.HandlerFunc) echo.HandlerFunc {
	if h.ep == nil {
		return next
	}
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		h.ep.Observe(name, start, err != nil || c.Response().Status >= http.StatusBadRequest)
		return err
	}
}

func chartParams(c echo.Context, req *models.ChartRequest) usecase.ChartParams {
	horizon := req.Horizon
	if c.QueryParam("horizon") == "" {
		horizon = -1
	}
	return usecase.ChartParams{
		Entity:  req.Entity,
		Period:  domrepo.NormalizePeriod(req.Period),
		N:       req.N,
		Horizon: horizon,
		Format:  req.Format,
		Options: chart.Options{
			Width:             req.Width,
			Height:            req.Height,
			YAxisLabel:        req.YLabel,
			XAxisLabel:        req.XLabel,
			LineColor:         req.LineColor,
			ForecastLineColor: req.ForecastColor,
		},
	}
}
