package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	signupdomain "github.com/mausamcrm/platform/internal/signup/domain"
	tenantdomain "github.com/mausamcrm/platform/internal/tenant/domain"
)

// Signup handles POST /api/auth/signup.
func (s *Server) Signup(c *gin.Context) {
	var req signupdomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	res, err := s.signupsvc.Signup(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// Login handles POST /api/auth/login.
func (s *Server) Login(c *gin.Context) {
	var req tenantdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	res, err := s.tenantSvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
