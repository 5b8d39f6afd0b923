package api

import (
	"net/http"
	"time"

	models "ChartCast/internal/domain/models"
	"ChartCast/internal/usecase"
	xhttp "ChartCast/pkg/http"
	xlogger "ChartCast/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// StreamConfig tunes the chart WebSocket.
type StreamConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
}

func (s StreamConfig) withDefaults() StreamConfig {
	if s.PingInterval <= 0 {
		s.PingInterval = 30 * time.Second
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = 5 * time.Second
	}
	return s
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamError is sent instead of a snapshot when rendering fails.
type streamError struct {
	Error string `json:"error"`
}

// Stream sends a geometry snapshot on connect and again whenever a forecast
// for the same entity and period becomes ready.
func (h *ChartHandler) Stream(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	params := chartParams(c, req)
	params.Format = "stream"

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already answered the client
		h.logger.Debug("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	if h.ep != nil {
		h.ep.Streams.Inc()
		defer h.ep.Streams.Dec()
	}

	key := usecase.HubKey(params.Entity, params.Period)
	notify, unsubscribe := h.hub.Subscribe(key)
	defer unsubscribe()

	ctx := c.Request().Context()
	log := h.logger.With(xlogger.String("stream", key))

	// reader drains control frames and notices the client going away
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(2 * h.stream.PingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * h.stream.PingInterval))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		var msg interface{}
		res, err := h.uc.Render(ctx, params)
		if err != nil {
			log.Warn("stream render failed", xlogger.Error(err))
			msg = streamError{Error: "render failed"}
		} else {
			msg = res.Payload()
		}
		_ = conn.SetWriteDeadline(time.Now().Add(h.stream.WriteTimeout))
		return conn.WriteJSON(msg)
	}

	if err := send(); err != nil {
		log.Debug("stream write failed", xlogger.Error(err))
		return nil
	}
	log.Debug("stream opened")

	ticker := time.NewTicker(h.stream.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			log.Debug("stream closed by client")
			return nil
		case <-ctx.Done():
			return nil
		case <-notify:
			if err := send(); err != nil {
				log.Debug("stream write failed", xlogger.Error(err))
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.stream.WriteTimeout)); err != nil {
				return nil
			}
		}
	}
}
