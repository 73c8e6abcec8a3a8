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

type TemplateController struct {
	templateRepo *repositories.EmailTemplateRepository
	mailer       services.Mailer
}

func NewTemplateController(templateRepo *repositories.EmailTemplateRepository, mailer services.Mailer) *TemplateController {
	return &TemplateController{templateRepo: templateRepo, mailer: mailer}
}

func (ctrl *TemplateController) loadTemplate(c *gin.Context) (*models.EmailTemplate, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid template ID"})
		return nil, false
	}

	tmpl, err := ctrl.templateRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Template not found"})
		} else {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		}
		return nil, false
	}
	return tmpl, true
}

// ListTemplates godoc
// @Summary List email templates (admin)
// @Tags Admin Templates
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} models.PaginationResponse
// @Router /admin/templates [get]
func (ctrl *TemplateController) ListTemplates(c *gin.Context) {
	page, limit := pagination(c)

	templates, total, err := ctrl.templateRepo.List(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Templates retrieved",
		Data:    templates,
		Meta:    models.NewMetaData(page, limit, total),
	})
}

// GetTemplate godoc
// @Summary Get template detail (admin)
// @Tags Admin Templates
// @Security BearerAuth
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.Response
// @Router /admin/templates/{id} [get]
func (ctrl *TemplateController) GetTemplate(c *gin.Context) {
	tmpl, ok := ctrl.loadTemplate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Template retrieved", Data: tmpl})
}

// CreateTemplate godoc
// @Summary Create email template (admin)
// @Tags Admin Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateTemplateRequest true "Template"
// @Success 201 {object} models.Response
// @Router /admin/templates [post]
func (ctrl *TemplateController) CreateTemplate(c *gin.Context) {
	var req models.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if _, err := ctrl.templateRepo.FindByNameAndLocale(req.Name, req.Locale); err == nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "A template with this name and locale already exists"})
		return
	}

	tmpl := &models.EmailTemplate{
		Name:      req.Name,
		Locale:    req.Locale,
		Subject:   req.Subject,
		Preheader: req.Preheader,
		HTMLBody:  req.HTMLBody,
		TextBody:  req.TextBody,
		Variables: req.Variables,
	}
	if err := ctrl.templateRepo.Create(tmpl); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Template created", Data: tmpl})
}

// UpdateTemplate godoc
// @Summary Update email template (admin)
// @Description Every update bumps the template version.
// @Tags Admin Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param request body models.UpdateTemplateRequest true "Template"
// @Success 200 {object} models.Response
// @Router /admin/templates/{id} [put]
func (ctrl *TemplateController) UpdateTemplate(c *gin.Context) {
	tmpl, ok := ctrl.loadTemplate(c)
	if !ok {
		return
	}

	var req models.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	tmpl.ApplyUpdate(req)

	if err := ctrl.templateRepo.Update(tmpl); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Template updated", Data: tmpl})
}

// DeleteTemplate godoc
// @Summary Delete email template (admin)
// @Tags Admin Templates
// @Security BearerAuth
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.Response
// @Router /admin/templates/{id} [delete]
func (ctrl *TemplateController) DeleteTemplate(c *gin.Context) {
	tmpl, ok := ctrl.loadTemplate(c)
	if !ok {
		return
	}

	if err := ctrl.templateRepo.Delete(tmpl.ID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Template deleted"})
}

// PreviewTemplate godoc
// @Summary Render a template with sample variables (admin)
// @Tags Admin Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param request body models.PreviewTemplateRequest false "Variables"
// @Success 200 {object} models.Response
// @Router /admin/templates/{id}/preview [post]
func (ctrl *TemplateController) PreviewTemplate(c *gin.Context) {
	tmpl, ok := ctrl.loadTemplate(c)
	if !ok {
		return
	}

	var req models.PreviewTemplateRequest
	c.ShouldBindJSON(&req)

	rendered := tmpl.ProcessContent(req.Variables)
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Template rendered", Data: gin.H{
		"rendered":          rendered,
		"missing_variables": tmpl.ValidateVariables(req.Variables),
	}})
}

// SendTestEmail godoc
// @Summary Send a template to a test address (admin)
// @Tags Admin Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.Response
// @Router /admin/templates/{id}/test [post]
func (ctrl *TemplateController) SendTestEmail(c *gin.Context) {
	tmpl, ok := ctrl.loadTemplate(c)
	if !ok {
		return
	}

	var req struct {
		To        string            `json:"to" binding:"required,email"`
		Variables map[string]string `json:"variables"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if err := ctrl.mailer.SendTemplate(tmpl.Name, tmpl.Locale, req.To, req.Variables); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Test email sent"})
}
