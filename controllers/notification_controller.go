package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"shopmart/models"
	"shopmart/repositories"
	"shopmart/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetMyNotifications godoc
// @Summary List own notifications
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param unread query bool false "Only unread"
// @Success 200 {object} models.PaginationResponse
// @Router /notifications [get]
func (ctrl *NotificationController) GetMyNotifications(c *gin.Context) {
	userID := c.GetInt("user_id")
	page, limit := pagination(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := ctrl.notificationService.GetUserNotifications(userID, page, limit, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Notifications retrieved",
		Data:    notifications,
		Meta:    models.NewMetaData(page, limit, total),
	})
}

// MarkRead godoc
// @Summary Mark one notification read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Response
// @Router /notifications/{id}/read [post]
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid notification ID"})
		return
	}

	if err := ctrl.notificationService.MarkAsRead(id, userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Notification marked read"})
}

// MarkManyRead godoc
// @Summary Mark several notifications read
// @Tags Notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} models.Response
// @Router /notifications/read [post]
func (ctrl *NotificationController) MarkManyRead(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req struct {
		IDs []int `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	count, err := ctrl.notificationService.MarkManyAsRead(req.IDs, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Notifications marked read", Data: gin.H{"count": count}})
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /notifications/read-all [post]
func (ctrl *NotificationController) MarkAllRead(c *gin.Context) {
	userID := c.GetInt("user_id")

	count, err := ctrl.notificationService.MarkAllAsRead(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "All notifications marked read", Data: gin.H{"count": count}})
}

// GetPreferences godoc
// @Summary List own notification preferences
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /notifications/preferences [get]
func (ctrl *NotificationController) GetPreferences(c *gin.Context) {
	userID := c.GetInt("user_id")

	prefs, err := ctrl.notificationService.GetPreferences(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Preferences retrieved", Data: prefs})
}

// UpdatePreference godoc
// @Summary Update a notification preference
// @Tags Notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdatePreferenceRequest true "Preference"
// @Success 200 {object} models.Response
// @Router /notifications/preferences [put]
func (ctrl *NotificationController) UpdatePreference(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	pref, err := ctrl.notificationService.UpdatePreference(userID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Preference updated", Data: pref})
}

// SendNotification godoc
// @Summary Send a notification (admin)
// @Tags Admin Notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} models.Response
// @Router /admin/notifications [post]
func (ctrl *NotificationController) SendNotification(c *gin.Context) {
	var req struct {
		UserID         *int              `json:"user_id"`
		RecipientEmail string            `json:"recipient_email"`
		Type           string            `json:"type" binding:"required"`
		Title          string            `json:"title" binding:"required"`
		Message        string            `json:"message" binding:"required"`
		Data           map[string]string `json:"data"`
		Priority       string            `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
		Channels       []string          `json:"channels"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	n, err := ctrl.notificationService.Send(services.SendInput{
		UserID:         req.UserID,
		RecipientEmail: req.RecipientEmail,
		Type:           req.Type,
		Title:          req.Title,
		Message:        req.Message,
		Data:           req.Data,
		Priority:       req.Priority,
		Channels:       req.Channels,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoRecipient) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "A user id or recipient email is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Notification sent", Data: n})
}

// SendBulk godoc
// @Summary Send a notification to many users (admin)
// @Tags Admin Notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} models.Response
// @Router /admin/notifications/bulk [post]
func (ctrl *NotificationController) SendBulk(c *gin.Context) {
	var req struct {
		UserIDs  []int             `json:"user_ids" binding:"required,min=1"`
		Type     string            `json:"type" binding:"required"`
		Title    string            `json:"title" binding:"required"`
		Message  string            `json:"message" binding:"required"`
		Data     map[string]string `json:"data"`
		Priority string            `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
		Channels []string          `json:"channels"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	sent, err := ctrl.notificationService.SendBulk(req.UserIDs, services.SendInput{
		Type:     req.Type,
		Title:    req.Title,
		Message:  req.Message,
		Data:     req.Data,
		Priority: req.Priority,
		Channels: req.Channels,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Notifications created", Data: gin.H{
		"recipients": len(req.UserIDs),
		"sent":       sent,
	}})
}

// RetryNotification godoc
// @Summary Retry a failed notification (admin)
// @Tags Admin Notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/notifications/{id}/retry [post]
func (ctrl *NotificationController) RetryNotification(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid notification ID"})
		return
	}

	n, err := ctrl.notificationService.Retry(id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Notification not found"})
		case errors.Is(err, services.ErrRetryLimitReached):
			c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "Notification is not retryable"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Notification retried", Data: n})
}
