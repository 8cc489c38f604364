package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/service"
)

// dateLayout is the format of the start/end query parameters on the
// unavailable-slot listing.
const dateLayout = "2006-01-02"

// Reservations is the slice of the reservation service the handlers
// need.  The concrete implementation is service.ReservationService.
type Reservations interface {
	Create(ctx context.Context, roomID uint64, start, end time.Time, requester model.Identity) (*model.Reservation, error)
	ListUnavailable(ctx context.Context, startDate, endDate time.Time, viewer model.Identity) ([]model.RoomReservations, error)
	Update(ctx context.Context, id, roomID uint64, start, end time.Time, requester model.Identity) (*model.Reservation, error)
	Cancel(ctx context.Context, id uint64, requester model.Identity) error
}

// ReservationHandler translates HTTP requests into reservation service
// calls and service outcomes back into status codes.  Authentication is
// handled by middleware before any of these run.
type ReservationHandler struct {
	Svc Reservations
}

func NewReservationHandler(svc Reservations) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type reservationReq struct {
	RoomID    uint64    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type reservationResp struct {
	ID        uint64    `json:"id"`
	RoomID    uint64    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

func toReservationResp(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:        r.ID,
		RoomID:    r.RoomID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
	}
}

// writeServiceError maps a service outcome onto its HTTP response.
// Unexpected errors become an opaque 500.
func writeServiceError(c echo.Context, err error) error {
	var se *service.ServiceError
	if errors.As(err, &se) {
		return c.JSON(se.StatusCode, echo.Map{"error": se.Message})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id, start_time and end_time are required"})
	}

	res, err := h.Svc.Create(c.Request().Context(), req.RoomID, req.StartTime, req.EndTime, ident)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// List handles GET /v1/reservations?start=YYYY-MM-DD&end=YYYY-MM-DD.
// It returns reserved slots grouped per room, with booked_by redacted
// for viewers who are neither STAFF nor the slot's creator.  The route
// middleware caches responses per viewer; writes do not invalidate the
// cache, so a repeat viewer may see availability up to the cache TTL
// (30s default) stale.  Conflict checks always hit the database, so a
// stale listing can never admit a double booking.
func (h *ReservationHandler) List(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	start, err := time.ParseInLocation(dateLayout, c.QueryParam("start"), time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must be a YYYY-MM-DD date"})
	}
	end, err := time.ParseInLocation(dateLayout, c.QueryParam("end"), time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be a YYYY-MM-DD date"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must not be before start"})
	}

	rooms, err := h.Svc.ListUnavailable(c.Request().Context(), start, end, ident)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Update handles PUT /v1/reservations/:id.
func (h *ReservationHandler) Update(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id, start_time and end_time are required"})
	}

	res, err := h.Svc.Update(c.Request().Context(), id, req.RoomID, req.StartTime, req.EndTime, ident)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Cancel handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	if err := h.Svc.Cancel(c.Request().Context(), id, ident); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
