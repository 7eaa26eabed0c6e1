package course

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		service: NewService(NewRepository(db)),
	}
}

// CreateClass godoc
// @Summary      Create class
// @Description  Creates a new class in the catalog. Admin only.
// @Tags         classes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateClassRequest  true  "Class data"
// @Success      201      {object}  Class
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create class"})
		return
	}

	c.JSON(http.StatusCreated, class)
}

// ListClasses godoc
// @Summary      List classes
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Class
// @Failure      500  {object}  gin.H
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	classes, err := h.service.GetAllClasses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classes"})
		return
	}

	c.JSON(http.StatusOK, classes)
}

// CreateInstance godoc
// @Summary      Schedule course instance
// @Description  Creates a dated occurrence of a class. Admin only.
// @Tags         classes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        classID  path      int                    true  "Class ID"
// @Param        request  body      CreateInstanceRequest  true  "Instance data"
// @Success      201      {object}  Instance
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/classes/{classID}/instances [post]
func (h *Handler) CreateInstance(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	var req CreateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inst, err := h.service.CreateInstance(c.Request.Context(), classID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		case errors.Is(err, ErrInvalidSchedule):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule, use RFC3339 times with end after start"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course instance"})
		}
		return
	}

	c.JSON(http.StatusCreated, inst)
}

// ListInstances godoc
// @Summary      List course instances
// @Description  Returns instances of a class with per-instance availability.
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int     true   "Class ID"
// @Param        future   query     string  false  "Only future instances (true/false)"
// @Success      200      {array}   InstanceWithAvailability
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /classes/{classID}/instances [get]
func (h *Handler) ListInstances(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	onlyFuture := c.DefaultQuery("future", "true") == "true"

	instances, err := h.service.GetInstances(c.Request.Context(), classID, onlyFuture)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch instances"})
		return
	}

	c.JSON(http.StatusOK, instances)
}
