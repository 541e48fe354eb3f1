package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/availability"
)

// SlotFinder is satisfied by *availability.Service.
type SlotFinder interface {
	AvailableSlots(ctx context.Context, date string, guests int) ([]string, error)
}

// AvailabilityHandler serves the public availability endpoint.  Every
// answer is a {success, data} or {success, error} envelope.
type AvailabilityHandler struct {
	Finder SlotFinder
	Log    *zap.Logger
}

func NewAvailabilityHandler(finder SlotFinder, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Finder: finder, Log: log}
}

type availabilityReq struct {
	Date   string          `json:"date"`
	Guests json.RawMessage `json:"guests"`
}

type availabilityData struct {
	Date           string   `json:"date"`
	Guests         int      `json:"guests"`
	AvailableSlots []string `json:"available_slots"`
}

const missingFields = "Missing required fields: date and guests"

// Post reads {date, guests} from a JSON body.
func (h *AvailabilityHandler) Post(c echo.Context) error {
	var req availabilityReq
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return fail(c, http.StatusBadRequest, missingFields)
	}
	return h.answer(c, req.Date, strings.Trim(string(req.Guests), `"`))
}

// Get reads ?date=&guests=.
func (h *AvailabilityHandler) Get(c echo.Context) error {
	return h.answer(c, c.QueryParam("date"), c.QueryParam("guests"))
}

// Options answers preflight requests; headers come from PermissiveCORS.
func (h *AvailabilityHandler) Options(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *AvailabilityHandler) answer(c echo.Context, date, guestsRaw string) error {
	date = strings.TrimSpace(date)
	guestsRaw = strings.TrimSpace(guestsRaw)
	if date == "" || guestsRaw == "" || guestsRaw == "null" {
		return fail(c, http.StatusBadRequest, missingFields)
	}
	guests, err := strconv.Atoi(guestsRaw)
	if err != nil || guests <= 0 {
		return fail(c, http.StatusBadRequest, "guests must be a positive integer")
	}

	slots, err := h.Finder.AvailableSlots(c.Request().Context(), date, guests)
	if errors.Is(err, availability.ErrInvalidRequest) {
		return fail(c, http.StatusBadRequest, missingFields)
	}
	if err != nil {
		h.Log.Error("availability lookup failed",
			zap.String("date", date), zap.Int("guests", guests), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	if slots == nil {
		slots = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    availabilityData{Date: date, Guests: guests, AvailableSlots: slots},
	})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}
