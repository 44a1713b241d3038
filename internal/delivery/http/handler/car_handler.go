package handler

import (
	"net/http"

	"seyyar/internal/listing"
	"seyyar/internal/usecase/car"
	"seyyar/pkg/utils"

	"github.com/gin-gonic/gin"
)

// imageFormField is the multipart field carrying a car photo.
const imageFormField = "image"

type CarHandler struct {
	service *car.Service
}

func NewCarHandler(service *car.Service) *CarHandler {
	return &CarHandler{service: service}
}

// RegisterRoutes expects router to be behind OptionalAuthMiddleware.
func (h *CarHandler) RegisterRoutes(router *gin.RouterGroup) {
	cars := router.Group("/cars")
	{
		cars.GET("", h.ListAvailable)
		cars.GET("/:id", h.GetDetail)
	}
}

// RegisterOwnerRoutes expects router to be behind AuthMiddleware.
func (h *CarHandler) RegisterOwnerRoutes(router *gin.RouterGroup) {
	router.GET("/my-cars", h.ListMine)
}

// RegisterRenterRoutes expects router to admit renters only.
func (h *CarHandler) RegisterRenterRoutes(router *gin.RouterGroup) {
	myCars := router.Group("/my-cars")
	{
		myCars.POST("", h.Create)
		myCars.PATCH("/:id/availability", h.ToggleAvailability)
		myCars.DELETE("/:id", h.Delete)
	}
}

// RegisterUploadRoutes expects router to admit renters only, with a body limit
// large enough for one image.
func (h *CarHandler) RegisterUploadRoutes(router *gin.RouterGroup) {
	router.POST("/my-cars/images", h.UploadImage)
}

// ListAvailable binds the filter criteria from the query string; features may repeat.
func (h *CarHandler) ListAvailable(c *gin.Context) {
	var criteria listing.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	resp, err := h.service.ListAvailable(c.Request.Context(), criteria)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cars retrieved successfully", resp)
}

func (h *CarHandler) GetDetail(c *gin.Context) {
	carID, ok := uuidParam(c, "id", "car")
	if !ok {
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), viewerOf(c), carID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Car retrieved successfully", detail)
}

func (h *CarHandler) ListMine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	cars, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cars retrieved successfully", cars)
}

func (h *CarHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req car.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Car listed successfully", created)
}

func (h *CarHandler) UploadImage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(imageFormField)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Image file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unable to read image file")
		return
	}
	defer file.Close()

	uploaded, err := h.service.UploadImage(c.Request.Context(), userID, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Image uploaded successfully", uploaded)
}

func (h *CarHandler) ToggleAvailability(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	carID, ok := uuidParam(c, "id", "car")
	if !ok {
		return
	}

	updated, err := h.service.ToggleAvailability(c.Request.Context(), userID, carID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Availability updated", updated)
}

func (h *CarHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	carID, ok := uuidParam(c, "id", "car")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, carID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Car deleted successfully", nil)
}
