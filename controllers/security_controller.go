package controllers

import (
	"errors"
	"net/http"

	"shopmart/models"
	"shopmart/services"

	"github.com/gin-gonic/gin"
)

type SecurityController struct {
	twoFactor *services.TwoFactorService
}

func NewSecurityController(twoFactor *services.TwoFactorService) *SecurityController {
	return &SecurityController{twoFactor: twoFactor}
}

// EnableTwoFactor godoc
// @Summary Start 2FA setup
// @Description Sends a verification code to the account email. Setup is
// completed by POSTing the code to /security/2fa/confirm.
// @Tags Security
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /security/2fa/enable [post]
func (ctrl *SecurityController) EnableTwoFactor(c *gin.Context) {
	email := c.GetString("user_email")

	if err := ctrl.twoFactor.Enable(email); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrTwoFactorUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Verification code sent"})
}

// ConfirmTwoFactor godoc
// @Summary Confirm 2FA setup
// @Tags Security
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.TwoFactorVerifyRequest true "Code"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /security/2fa/confirm [post]
func (ctrl *SecurityController) ConfirmTwoFactor(c *gin.Context) {
	userID := c.GetInt("user_id")
	email := c.GetString("user_email")

	var req struct {
		Code string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if err := ctrl.twoFactor.Confirm(userID, email, req.Code); err != nil {
		if errors.Is(err, services.ErrInvalidCode) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Invalid or expired code"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Two-factor authentication enabled"})
}

// DisableTwoFactor godoc
// @Summary Disable 2FA
// @Tags Security
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /security/2fa/disable [post]
func (ctrl *SecurityController) DisableTwoFactor(c *gin.Context) {
	userID := c.GetInt("user_id")

	if err := ctrl.twoFactor.Disable(userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Two-factor authentication disabled"})
}
