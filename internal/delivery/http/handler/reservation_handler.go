package handler

import (
	"net/http"

	"seyyar/internal/usecase/reservation"
	"seyyar/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service *reservation.Service
}

func NewReservationHandler(service *reservation.Service) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes expects router to be behind OptionalAuthMiddleware so anonymous
// visitors get the sign-in redirect instead of a bare 401.
func (h *ReservationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/cars/:id/reservations", h.Create)
}

// RegisterProtectedRoutes expects router to be behind AuthMiddleware.
func (h *ReservationHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.DELETE("/reservations/:id", h.Cancel)
	router.GET("/bookings", h.Bookings)
}

func (h *ReservationHandler) Create(c *gin.Context) {
	carID, ok := uuidParam(c, "id", "car")
	if !ok {
		return
	}

	state, err := h.service.Create(c.Request.Context(), viewerOf(c), carID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Car reserved successfully", state)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	reservationID, ok := uuidParam(c, "id", "reservation")
	if !ok {
		return
	}

	state, err := h.service.Cancel(c.Request.Context(), userID, reservationID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reservation cancelled", state)
}

func (h *ReservationHandler) Bookings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req reservation.BookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	bookings, err := h.service.Bookings(c.Request.Context(), userID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Bookings retrieved successfully", bookings)
}
