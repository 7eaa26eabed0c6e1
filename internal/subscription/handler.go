package subscription

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"wildenergy/internal/auth"
	"wildenergy/internal/logger"
	"wildenergy/internal/metrics"
	"wildenergy/internal/plan"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo     Repository
	planRepo plan.Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo:     NewRepository(db),
		planRepo: plan.NewRepository(db),
	}
}

// Create godoc
// @Summary      Create subscription
// @Description  Subscribes a member to a plan, creating one session balance per plan group. Admin only.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSubscriptionRequest  true  "Subscription data"
// @Success      201      {object}  SubscriptionWithBalances
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/subscriptions [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.planRepo.GetPlanByID(c.Request.Context(), req.PlanID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	startDate := time.Now()
	if req.StartDate != "" {
		startDate, err = time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, use RFC3339"})
			return
		}
	}

	months := req.Months
	if months == 0 {
		months = 1
	}
	endDate := startDate.AddDate(0, months, 0)

	sub, err := h.repo.CreateSubscription(c.Request.Context(), req.MemberID, req.PlanID, startDate, endDate)
	if err != nil {
		logger.Error("Failed to create subscription", "error", err, "member_id", req.MemberID, "plan_id", req.PlanID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	metrics.RecordSubscription(p.Name)
	for _, b := range sub.Balances {
		metrics.SetSessionsRemaining(strconv.Itoa(b.SubscriptionID), b.GroupName, float64(b.SessionsRemaining))
	}

	c.JSON(http.StatusCreated, sub)
}

// ListMine godoc
// @Summary      List my subscriptions
// @Description  Returns the authenticated member's subscriptions with session balances.
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   SubscriptionWithBalances
// @Failure      401  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /subscriptions [get]
func (h *Handler) ListMine(c *gin.Context) {
	memberID, exists := auth.GetMemberID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Member not authenticated"})
		return
	}

	subs, err := h.repo.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

// ListByMember godoc
// @Summary      List member subscriptions
// @Description  Returns a member's subscriptions with balances. Admin only.
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        memberID  path      int  true  "Member ID"
// @Success      200       {array}   SubscriptionWithBalances
// @Failure      400       {object}  gin.H
// @Failure      500       {object}  gin.H
// @Router       /admin/members/{memberID}/subscriptions [get]
func (h *Handler) ListByMember(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	subs, err := h.repo.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

// Cancel godoc
// @Summary      Cancel subscription
// @Description  Cancels an active subscription. Admin only.
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        subscriptionID  path      int  true  "Subscription ID"
// @Success      200             {object}  gin.H
// @Failure      400             {object}  gin.H
// @Failure      409             {object}  gin.H
// @Router       /admin/subscriptions/{subscriptionID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	subscriptionID, err := strconv.Atoi(c.Param("subscriptionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	if err := h.repo.CancelSubscription(c.Request.Context(), subscriptionID); err != nil {
		if errors.Is(err, ErrNotFoundOrInactive) {
			c.JSON(http.StatusConflict, gin.H{"error": "Subscription not found or not active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription cancelled"})
}
