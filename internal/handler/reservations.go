package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/dashboard"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/store"
)

// ReservationFinder reads reservations for a scope.
type ReservationFinder interface {
	FetchReservations(ctx context.Context, scope store.Scope) ([]model.ReservationRecord, error)
}

// CustomerReservations lists a customer's reservations by email.
type CustomerReservations interface {
	ListByEmail(ctx context.Context, email string) ([]model.ReservationRecord, error)
}

// StatusUpdater changes a reservation's status and reports success.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) bool
}

// ReservationHandler serves the admin reservation list, status changes,
// the table list and the signed-in customer's own reservations.
type ReservationHandler struct {
	Finder   ReservationFinder
	Customer CustomerReservations
	Tables   dashboard.TableLister
	Updater  StatusUpdater
	Log      *zap.Logger
}

func NewReservationHandler(finder ReservationFinder, customer CustomerReservations, tables dashboard.TableLister, updater StatusUpdater, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{Finder: finder, Customer: customer, Tables: tables, Updater: updater, Log: log}
}

type statusReq struct {
	Status string `json:"status"`
}

// List returns reservations for ?date=YYYY-MM-DD, or all of them when the
// parameter is absent.
func (h *ReservationHandler) List(c echo.Context) error {
	scope := store.ScopeAll
	if date := strings.TrimSpace(c.QueryParam("date")); date != "" {
		if _, err := dashboard.ParseDate(date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		scope = store.DateScope(date)
	}
	recs, err := h.Finder.FetchReservations(c.Request().Context(), scope)
	if err != nil {
		h.Log.Error("list reservations failed", zap.String("scope", string(scope)), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": model.CloneRecords(recs)})
}

// UpdateStatus sets the status of reservation :id.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if id == "" || !model.ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id or status"})
	}
	if !h.Updater.UpdateStatus(c.Request().Context(), id, status) {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "status update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// ListTables returns every restaurant table.
func (h *ReservationHandler) ListTables(c echo.Context) error {
	tables, err := h.Tables.ListTables(c.Request().Context())
	if err != nil {
		h.Log.Error("list tables failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tables})
}

// Mine returns the reservations made with the signed-in user's email.
func (h *ReservationHandler) Mine(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.Email == "" {
		return c.JSON(http.StatusOK, echo.Map{"items": []model.ReservationRecord{}})
	}
	recs, err := h.Customer.ListByEmail(c.Request().Context(), id.Email)
	if err != nil {
		h.Log.Error("list own reservations failed", zap.Uint64("user_id", id.UserID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": recs})
}
