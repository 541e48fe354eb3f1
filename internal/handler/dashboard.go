package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/dashboard"
)

// DashboardHandler exposes the dashboard controller over HTTP.
type DashboardHandler struct {
	Ctrl *dashboard.Controller
	Log  *zap.Logger
}

func NewDashboardHandler(ctrl *dashboard.Controller, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Ctrl: ctrl, Log: log}
}

type setDateReq struct {
	Date string `json:"date"`
}

type advanceReq struct {
	Direction int `json:"direction"`
}

// Get returns the current snapshot.
func (h *DashboardHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Ctrl.Snapshot())
}

// SetDate selects a date and returns the snapshot after its load.
func (h *DashboardHandler) SetDate(c echo.Context) error {
	var req setDateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Ctrl.SetScopeDate(c.Request().Context(), req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, h.Ctrl.Snapshot())
}

// Advance moves the date one day back or forward.
func (h *DashboardHandler) Advance(c echo.Context) error {
	var req advanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Ctrl.AdvanceDate(c.Request().Context(), req.Direction); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, h.Ctrl.Snapshot())
}

// Stream pushes a snapshot as a server-sent event on connect and after
// every dashboard change until the client goes away.  Snapshots that
// arrive faster than the client reads are coalesced to the latest.
func (h *DashboardHandler) Stream(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	updates := make(chan dashboard.Snapshot, 1)
	remove := h.Ctrl.OnChange(func(s dashboard.Snapshot) {
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer remove()

	if err := writeEvent(w, h.Ctrl.Snapshot()); err != nil {
		return nil
	}
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-updates:
			if err := writeEvent(w, s); err != nil {
				h.Log.Debug("dashboard stream closed", zap.Error(err))
				return nil
			}
		}
	}
}

func writeEvent(w *echo.Response, s dashboard.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
