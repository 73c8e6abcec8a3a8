package controllers

import (
	"net/http"

	"shopmart/libs"
	"shopmart/models"
	"shopmart/services"
	"shopmart/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register godoc
// @Summary Register new user
// @Description Register a new customer account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register Request"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	result, err := ctrl.authService.Register(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Registration successful", Data: result})
}

// Login godoc
// @Summary Login
// @Description Login with email and password. When 2FA is enabled the
// response carries two_factor_required and no token; complete the login
// via /auth/verify-2fa.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	result, err := ctrl.authService.Login(req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	message := "Login successful"
	if result.TwoFactorRequired {
		message = "Verification code sent"
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: message, Data: result})
}

// VerifyTwoFactor godoc
// @Summary Complete a 2FA login
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.TwoFactorVerifyRequest true "Verify Request"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/verify-2fa [post]
func (ctrl *AuthController) VerifyTwoFactor(c *gin.Context) {
	var req models.TwoFactorVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	result, err := ctrl.authService.VerifyTwoFactorLogin(req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Login successful", Data: result})
}

// GetProfile godoc
// @Summary Get own profile
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /profile [get]
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	profile, err := ctrl.authService.GetProfile(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Profile retrieved", Data: profile})
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile"
// @Success 200 {object} models.Response
// @Router /profile [put]
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if err := ctrl.authService.UpdateProfile(userID, req); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	profile, _ := ctrl.authService.GetProfile(userID)
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Profile updated", Data: profile})
}

// UploadPhoto godoc
// @Summary Upload profile photo
// @Tags Profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo"
// @Success 200 {object} models.Response
// @Router /profile/photo [post]
func (ctrl *AuthController) UploadPhoto(c *gin.Context) {
	userID := c.GetInt("user_id")

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Photo file required"})
		return
	}

	localPath, err := utils.UploadFile(c, fileHeader, "profiles")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	photoURL, err := libs.UploadToCloudinary(localPath, "profiles")
	if err != nil {
		// The local copy still serves the photo when cloudinary is not configured.
		photoURL = localPath
	}

	if err := ctrl.authService.UpdateProfilePhoto(userID, photoURL); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Photo updated", Data: gin.H{"photo_url": photoURL}})
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Passwords"
// @Success 200 {object} models.Response
// @Router /profile/password [put]
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if err := ctrl.authService.ChangePassword(userID, req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Password changed"})
}
