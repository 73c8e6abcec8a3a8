package controllers

import (
	"errors"
	"net/http"

	"shopmart/middleware"
	"shopmart/models"
	"shopmart/services"

	"github.com/gin-gonic/gin"
)

type TranslationController struct {
	translationService *services.TranslationService
	catalogService     *services.CatalogTranslationService
}

func NewTranslationController(translationService *services.TranslationService, catalogService *services.CatalogTranslationService) *TranslationController {
	return &TranslationController{translationService: translationService, catalogService: catalogService}
}

// GetLocales godoc
// @Summary List available locales
// @Tags Translations
// @Produce json
// @Success 200 {object} models.Response
// @Router /translations/locales [get]
func (ctrl *TranslationController) GetLocales(c *gin.Context) {
	locales, err := ctrl.translationService.Locales()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Locales retrieved", Data: locales})
}

// GetMessages godoc
// @Summary Get UI messages for a locale
// @Description Without a path locale the request locale (?lang= or
// Accept-Language) is used.
// @Tags Translations
// @Produce json
// @Param locale path string false "Locale"
// @Success 200 {object} models.Response
// @Router /translations/{locale} [get]
func (ctrl *TranslationController) GetMessages(c *gin.Context) {
	locale := c.Param("locale")
	if locale == "" {
		locale = middleware.GetLocale(c)
	}

	messages, err := ctrl.translationService.Load(locale)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Messages retrieved", Data: messages})
}

// SetMessage godoc
// @Summary Set a UI message (admin)
// @Tags Admin Translations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.SetTranslationRequest true "Message"
// @Success 200 {object} models.Response
// @Router /admin/translations [put]
func (ctrl *TranslationController) SetMessage(c *gin.Context) {
	var req models.SetTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if err := ctrl.translationService.SetKey(req.Locale, req.Key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Message saved"})
}

// DeleteMessage godoc
// @Summary Delete a UI message (admin)
// @Tags Admin Translations
// @Security BearerAuth
// @Produce json
// @Param locale path string true "Locale"
// @Param key query string true "Dotted message key"
// @Success 200 {object} models.Response
// @Router /admin/translations/{locale} [delete]
func (ctrl *TranslationController) DeleteMessage(c *gin.Context) {
	locale := c.Param("locale")
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "key query parameter required"})
		return
	}

	if err := ctrl.translationService.DeleteKey(locale, key); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Message deleted"})
}

// GetStats godoc
// @Summary Translation completeness per locale (admin)
// @Tags Admin Translations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /admin/translations/stats [get]
func (ctrl *TranslationController) GetStats(c *gin.Context) {
	uiStats, err := ctrl.translationService.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	catalogStats, err := ctrl.catalogService.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Stats retrieved", Data: gin.H{
		"ui":      uiStats,
		"catalog": catalogStats,
	}})
}

// SyncMessages godoc
// @Summary Copy missing default-locale keys into every locale (admin)
// @Tags Admin Translations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /admin/translations/sync [post]
func (ctrl *TranslationController) SyncMessages(c *gin.Context) {
	created, err := ctrl.translationService.Sync()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Locales synced", Data: created})
}

// SetCatalogTranslation godoc
// @Summary Translate a catalog field (admin)
// @Tags Admin Translations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} models.Response
// @Router /admin/translations/catalog [put]
func (ctrl *TranslationController) SetCatalogTranslation(c *gin.Context) {
	var req struct {
		EntityType string `json:"entity_type" binding:"required,oneof=product category page"`
		EntityID   int    `json:"entity_id" binding:"required"`
		Locale     string `json:"locale" binding:"required"`
		Field      string `json:"field" binding:"required"`
		Value      string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	t, err := ctrl.catalogService.SetTranslation(req.EntityType, req.EntityID, req.Locale, req.Field, req.Value)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Translation saved", Data: t})
}

// CreateMissingCatalog godoc
// @Summary Stub missing catalog translations for a locale (admin)
// @Tags Admin Translations
// @Security BearerAuth
// @Produce json
// @Param locale path string true "Target locale"
// @Success 200 {object} models.Response
// @Router /admin/translations/catalog/{locale}/create-missing [post]
func (ctrl *TranslationController) CreateMissingCatalog(c *gin.Context) {
	locale := c.Param("locale")

	created, err := ctrl.catalogService.CreateMissing(locale)
	if err != nil {
		if errors.Is(err, services.ErrSameLocale) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Missing translations created", Data: gin.H{"created": created}})
}

// DuplicateCatalog godoc
// @Summary Copy catalog translations between locales (admin)
// @Tags Admin Translations
// @Security BearerAuth
// @Produce json
// @Param source query string true "Source locale"
// @Param target query string true "Target locale"
// @Success 200 {object} models.Response
// @Router /admin/translations/catalog/duplicate [post]
func (ctrl *TranslationController) DuplicateCatalog(c *gin.Context) {
	source := c.Query("source")
	target := c.Query("target")
	if source == "" || target == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "source and target query parameters required"})
		return
	}

	copied, err := ctrl.catalogService.Duplicate(source, target)
	if err != nil {
		if errors.Is(err, services.ErrSameLocale) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Translations duplicated", Data: gin.H{"copied": copied}})
}
