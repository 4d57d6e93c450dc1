package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"SignBridge/pkg/logger"
	"SignBridge/pkg/middleware"
	"SignBridge/pkg/response"
)

type signUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) handleSignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "requête invalide", nil)
		return
	}

	user, err := h.accounts.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	if err := middleware.SetSessionUser(c, user.ID); err != nil {
		logger.Warn("session save failed after signup", zap.String("user", user.ID), zap.Error(err))
	}
	response.Created(c, "compte créé", user)
}

func (h *Handlers) handleSignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "requête invalide", nil)
		return
	}

	user, err := h.accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	if err := middleware.SetSessionUser(c, user.ID); err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, "connecté", user)
}

func (h *Handlers) handleSignOut(c *gin.Context) {
	if err := middleware.ClearSessionUser(c); err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, "déconnecté", nil)
}

func (h *Handlers) handleSession(c *gin.Context) {
	user, err := h.accounts.GetUserProfile(c.Request.Context(), middleware.SessionUser(c))
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, "session active", user)
}
