package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/services"
)

type HoldService interface {
	PlaceHold(ctx context.Context, req services.PlaceHoldRequest) (*services.HoldResult, error)
	CancelHold(ctx context.Context, holdID uuid.UUID, requesterID string) error
	ConfirmHold(ctx context.Context, holdID uuid.UUID) error
	GetHold(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error)
	Availability(ctx context.Context, screeningID string) ([]domain.Seat, error)
}

type HoldHandler struct {
	svc         HoldService
	confirmRole string
	logger      hclog.Logger
}

func NewHoldHandler(svc HoldService, confirmRole string, logger hclog.Logger) *HoldHandler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &HoldHandler{svc: svc, confirmRole: confirmRole, logger: logger.Named("http")}
}

// maxTTLSeconds is the largest ttl_seconds that still fits in a time.Duration.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

type placeHoldBody struct {
	SeatIDs    []string `json:"seat_ids"`
	TTLSeconds int      `json:"ttl_seconds"`
}

// PlaceHold handles POST /v1/screenings/:id/holds.
func (h *HoldHandler) PlaceHold(c echo.Context) error {
	holderID, ok := subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body placeHoldBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TTLSeconds < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ttl_seconds must not be negative"})
	}
	if int64(body.TTLSeconds) > maxTTLSeconds {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ttl_seconds out of range"})
	}

	res, err := h.svc.PlaceHold(c.Request().Context(), services.PlaceHoldRequest{
		ScreeningID: c.Param("id"),
		HolderID:    holderID,
		SeatIDs:     body.SeatIDs,
		TTL:         time.Duration(body.TTLSeconds) * time.Second,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, res)
}

// Seats handles GET /v1/screenings/:id/seats. The answer may lag behind
// concurrent holds by the cache TTL.
func (h *HoldHandler) Seats(c echo.Context) error {
	seats, err := h.svc.Availability(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"screening_id": c.Param("id"), "seats": seats})
}

func (h *HoldHandler) GetHold(c echo.Context) error {
	holderID, ok := subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}

	hold, err := h.svc.GetHold(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	if hold.HolderID != holderID && role(c) != h.confirmRole {
		return h.writeError(c, domain.ErrNotOwner)
	}

	return c.JSON(http.StatusOK, hold)
}

// CancelHold handles DELETE /v1/holds/:id. Only the holder may cancel.
func (h *HoldHandler) CancelHold(c echo.Context) error {
	holderID, ok := subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}

	if err := h.svc.CancelHold(c.Request().Context(), id, holderID); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ConfirmHold handles POST /v1/holds/:id/confirm, called by the payment flow.
func (h *HoldHandler) ConfirmHold(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}

	if err := h.svc.ConfirmHold(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HoldHandler) writeError(c echo.Context, err error) error {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seats unavailable", "seats": conflict.Seats})
	case errors.Is(err, domain.ErrBusy):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "screening busy, retry shortly"})
	case errors.Is(err, domain.ErrScreeningNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
	case errors.Is(err, domain.ErrHoldNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
	case errors.Is(err, domain.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "hold belongs to another holder"})
	case errors.Is(err, domain.ErrNotActive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "hold is no longer active"})
	case errors.Is(err, domain.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	h.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
