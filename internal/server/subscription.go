package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
)

const validationSecretHeader = "X-Validation-Secret"

func (s *Server) requireValidationSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.authzSvc.Authorize(c.GetHeader(validationSecretHeader)) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *Server) resolveTenant(c *gin.Context) (snowflake.ID, bool) {
	tenant, err := s.tenantSvc.GetBySubdomain(c.Request.Context(), c.Param("subdomain"))
	if err != nil {
		AbortWithError(c, err)
		return 0, false
	}
	return tenant.ID, true
}

// SubscriptionStatus handles GET /api/subscription/status/:subdomain.
func (s *Server) SubscriptionStatus(c *gin.Context) {
	tenantID, ok := s.resolveTenant(c)
	if !ok {
		return
	}

	res, err := s.subscriptionSvc.Entitlement(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

type upsertSubscriptionRequest struct {
	PlanID    string `json:"plan_id"`
	Interval  string `json:"interval"`
	TrialDays int    `json:"trial_days"`
}

// UpsertSubscription handles POST /api/subscription/:subdomain.
func (s *Server) UpsertSubscription(c *gin.Context) {
	var req upsertSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tenantID, ok := s.resolveTenant(c)
	if !ok {
		return
	}

	sub, err := s.subscriptionSvc.CreateOrActivate(c.Request.Context(), subscriptiondomain.CreateOrActivateRequest{
		TenantID:  tenantID,
		PlanID:    req.PlanID,
		Interval:  req.Interval,
		TrialDays: req.TrialDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

type switchSubscriptionRequest struct {
	NewPlanID string `json:"new_plan_id"`
	Immediate bool   `json:"immediate"`
}

// SwitchSubscription handles POST /api/subscription/:subdomain/switch.
func (s *Server) SwitchSubscription(c *gin.Context) {
	var req switchSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tenantID, ok := s.resolveTenant(c)
	if !ok {
		return
	}

	if err := s.subscriptionSvc.SwitchPlan(c.Request.Context(), subscriptiondomain.SwitchPlanRequest{
		TenantID:  tenantID,
		NewPlanID: req.NewPlanID,
		Immediate: req.Immediate,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type cancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

// CancelSubscription handles POST /api/subscription/:subdomain/cancel.
func (s *Server) CancelSubscription(c *gin.Context) {
	var req cancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tenantID, ok := s.resolveTenant(c)
	if !ok {
		return
	}

	if err := s.subscriptionSvc.Cancel(c.Request.Context(), subscriptiondomain.CancelRequest{
		TenantID:  tenantID,
		Immediate: req.Immediate,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type updateSubscriptionStatusRequest struct {
	Status string `json:"status"`
}

// UpdateSubscriptionStatus handles PUT /api/subscription/:subdomain/status.
func (s *Server) UpdateSubscriptionStatus(c *gin.Context) {
	var req updateSubscriptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tenantID, ok := s.resolveTenant(c)
	if !ok {
		return
	}

	if err := s.subscriptionSvc.UpdateStatus(c.Request.Context(), subscriptiondomain.UpdateStatusRequest{
		TenantID: tenantID,
		Status:   subscriptiondomain.Status(req.Status),
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
