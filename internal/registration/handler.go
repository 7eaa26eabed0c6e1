package registration

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"wildenergy/internal/auth"
	"wildenergy/internal/course"
	"wildenergy/internal/member"
	"wildenergy/internal/subscription"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB, mailer Mailer) *Handler {
	return &Handler{
		service: NewService(
			NewRepository(db),
			course.NewRepository(db),
			subscription.NewRepository(db),
			member.NewRepository(db),
			mailer,
		),
	}
}

// Register godoc
// @Summary      Register for a course
// @Description  Books the authenticated member into a course instance, debiting one session from an eligible balance.
// @Tags         registrations
// @Produce      json
// @Param        courseInstanceID  path      int  true  "Course instance ID"
// @Success      201               {object}  RegisterResponse
// @Failure      402               {object}  gin.H
// @Failure      404               {object}  gin.H
// @Failure      409               {object}  gin.H
// @Security     BearerAuth
// @Router       /courses/{courseInstanceID}/register [post]
func (h *Handler) Register(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	courseInstanceID, err := strconv.Atoi(c.Param("courseInstanceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course instance ID"})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), memberID, courseInstanceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Course instance not found"})
		case errors.Is(err, ErrCourseInPast):
			c.JSON(http.StatusConflict, gin.H{"error": "Course has already started"})
		case errors.Is(err, ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "Already registered for this course"})
		case errors.Is(err, ErrCourseFull):
			c.JSON(http.StatusConflict, gin.H{"error": "Course is full"})
		case errors.Is(err, ErrNoSessionsRemaining):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "No sessions remaining for this group"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Cancel godoc
// @Summary      Cancel a registration
// @Description  Cancels the member's registration. Within 24 hours of the course start the session is forfeited.
// @Tags         registrations
// @Produce      json
// @Param        registrationID  path      int  true  "Registration ID"
// @Success      200             {object}  CancelResult
// @Failure      404             {object}  gin.H
// @Failure      409             {object}  gin.H
// @Security     BearerAuth
// @Router       /registrations/{registrationID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	registrationID, err := strconv.Atoi(c.Param("registrationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
		return
	}

	// Admins may cancel on behalf of any member.
	if role, exists := c.Get("member_role"); exists && role == "admin" {
		memberID = 0
	}

	result, err := h.service.Cancel(c.Request.Context(), memberID, registrationID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrRegistrationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		case errors.Is(err, ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "Registration cannot be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel registration"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckIn godoc
// @Summary      Check a member in
// @Description  Records attendance for a QR scan or a registration ID. Repeated scans are idempotent.
// @Tags         checkins
// @Accept       json
// @Produce      json
// @Param        request  body      CheckInRequest  true  "QR code or registration ID"
// @Success      200      {object}  CheckInResult
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Security     BearerAuth
// @Router       /checkin [post]
func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CheckIn(c.Request.Context(), req, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrQRCodeNotFound), errors.Is(err, ErrRegistrationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		case errors.Is(err, ErrRegistrationCancelled):
			c.JSON(http.StatusConflict, gin.H{"error": "Registration has been cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check in"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckOut godoc
// @Summary      Revert a check-in
// @Description  Removes a check-in made in error. The session remains consumed.
// @Tags         checkins
// @Produce      json
// @Param        registrationID  path      int  true  "Registration ID"
// @Success      200             {object}  gin.H
// @Failure      404             {object}  gin.H
// @Security     BearerAuth
// @Router       /registrations/{registrationID}/checkout [post]
func (h *Handler) CheckOut(c *gin.Context) {
	registrationID, err := strconv.Atoi(c.Param("registrationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
		return
	}

	if err := h.service.CheckOut(c.Request.Context(), registrationID); err != nil {
		switch {
		case errors.Is(err, ErrRegistrationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		case errors.Is(err, ErrCheckInNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No check-in recorded for this registration"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revert check-in"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Check-in reverted"})
}

// ResolveQRCode godoc
// @Summary      Resolve a QR code
// @Description  Returns the registration, member and course behind a QR code plus live attendance counts.
// @Tags         checkins
// @Produce      json
// @Param        code  path      string  true  "QR code"
// @Success      200   {object}  QRCodeDetails
// @Failure      404   {object}  gin.H
// @Security     BearerAuth
// @Router       /qr/{code} [get]
func (h *Handler) ResolveQRCode(c *gin.Context) {
	details, err := h.service.ResolveQRCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, ErrQRCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve QR code"})
		return
	}

	c.JSON(http.StatusOK, details)
}

// ListMine godoc
// @Summary      List my registrations
// @Tags         registrations
// @Produce      json
// @Success      200  {array}  RegistrationWithDetails
// @Security     BearerAuth
// @Router       /registrations/me [get]
func (h *Handler) ListMine(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	regs, err := h.service.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list registrations"})
		return
	}

	c.JSON(http.StatusOK, regs)
}

// ListByCourse godoc
// @Summary      List registrations for a course instance
// @Tags         registrations
// @Produce      json
// @Param        courseInstanceID  path     int  true  "Course instance ID"
// @Success      200               {array}  RegistrationWithDetails
// @Security     BearerAuth
// @Router       /admin/courses/{courseInstanceID}/registrations [get]
func (h *Handler) ListByCourse(c *gin.Context) {
	courseInstanceID, err := strconv.Atoi(c.Param("courseInstanceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course instance ID"})
		return
	}

	regs, err := h.service.ListByCourse(c.Request.Context(), courseInstanceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list registrations"})
		return
	}

	c.JSON(http.StatusOK, regs)
}

// StatsByDay godoc
// @Summary      Registrations per day
// @Tags         analytics
// @Produce      json
// @Param        from  query    string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query    string  false  "End date (YYYY-MM-DD)"
// @Success      200   {array}  StatsByDay
// @Security     BearerAuth
// @Router       /admin/stats/registrations/daily [get]
func (h *Handler) StatsByDay(c *gin.Context) {
	from, to, err := parseStatsRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.service.StatsByDay(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// StatsByClass godoc
// @Summary      Registrations per class
// @Tags         analytics
// @Produce      json
// @Param        from  query    string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query    string  false  "End date (YYYY-MM-DD)"
// @Success      200   {array}  StatsByClass
// @Security     BearerAuth
// @Router       /admin/stats/registrations/classes [get]
func (h *Handler) StatsByClass(c *gin.Context) {
	from, to, err := parseStatsRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.service.StatsByClass(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseStatsRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date, expected YYYY-MM-DD")
		}
		from = parsed
	}

	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, expected YYYY-MM-DD")
		}
		// Include the whole end day.
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	return from, to, nil
}
