package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/response"
	"github.com/stemsi/exstem-report/internal/service"
	"github.com/stemsi/exstem-report/internal/validator"
	ws "github.com/stemsi/exstem-report/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams dashboards: every select action is answered with the
// summaries of the new selection.
type WSHandler struct {
	reportService *service.ReportService
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(reportService *service.ReportService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		reportService: reportService,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// DashboardStream godoc
// WS /ws/v1/dashboard
// Sends the selection options on connect, then one summaries event per select action.
func (h *WSHandler) DashboardStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("request_id", response.RequestID(c)).
		Str("client_ip", c.ClientIP()).
		Logger()
	wsLog.Info().Msg("Dashboard connected")

	ctx := c.Request.Context()

	opts, err := h.reportService.Options(ctx)
	if err != nil {
		wsLog.Error().Err(err).Msg("Dataset unavailable")
		ws.WriteError(conn, "dataset unavailable", nil)
		return
	}
	if err := ws.WriteTyped(conn, ws.OptionsResponse{Event: ws.EventOptions, Options: opts}); err != nil {
		return
	}

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var writeErr error
		switch msg.Action {
		case ws.ActionSelect:
			writeErr = h.handleSelect(ctx, conn, wsLog, &msg)
		case ws.ActionPing:
			writeErr = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			writeErr = ws.WriteError(conn, "unknown action: "+string(msg.Action), nil)
		}
		if writeErr != nil {
			wsLog.Debug().Err(writeErr).Msg("Write failed")
			return
		}
	}
}

// handleSelect recomputes the dashboard for the selection in msg.
func (h *WSHandler) handleSelect(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, msg *ws.RequestPayload) error {
	if fields := validator.Struct(msg); fields != nil {
		return ws.WriteError(conn, "invalid selection", fields)
	}

	dash, err := h.reportService.Dashboard(ctx, msg.Selection())
	if err != nil {
		wsLog.Error().Err(err).Msg("Dashboard computation failed")
		return ws.WriteError(conn, "dataset unavailable", nil)
	}

	return ws.WriteTyped(conn, ws.SummariesResponse{Event: ws.EventSummaries, Dashboard: dash})
}
