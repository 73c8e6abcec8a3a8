package controllers

import (
	"net/http"
	"strconv"

	"shopmart/libs"
	"shopmart/models"
	"shopmart/services"
	"shopmart/utils"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController(productService *services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// GetAllCategories godoc
// @Summary Get all categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.Response
// @Router /categories [get]
func (ctrl *ProductController) GetAllCategories(c *gin.Context) {
	categories, err := ctrl.productService.GetAllCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Categories retrieved", Data: categories})
}

// GetAllProducts godoc
// @Summary Get paginated products
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search by name"
// @Success 200 {object} models.PaginationResponse
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, limit := pagination(c)
	search := c.Query("search")

	response, err := ctrl.productService.GetAllProducts(page, limit, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetProduct godoc
// @Summary Get product detail
// @Tags Catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid product ID"})
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Product not found"})
		return
	}

	variants, _ := ctrl.productService.GetProductVariants(id)
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product retrieved", Data: gin.H{
		"product":  product,
		"variants": variants,
	}})
}

// CreateProduct godoc
// @Summary Create product (admin)
// @Tags Admin Catalog
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param category_id formData int true "Category"
// @Param price formData number true "Price"
// @Param stock formData int false "Stock"
// @Param image formData file false "Image"
// @Success 201 {object} models.Response
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		localPath, err := utils.UploadFile(c, fileHeader, "products")
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
			return
		}
		if url, err := libs.UploadToCloudinary(localPath, "products"); err == nil {
			req.ImageURL = url
		} else {
			req.ImageURL = localPath
		}
	}

	product, err := ctrl.productService.CreateProduct(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Product created", Data: product})
}

// UpdateProduct godoc
// @Summary Update product (admin)
// @Tags Admin Catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body models.UpdateProductRequest true "Product"
// @Success 200 {object} models.Response
// @Router /admin/products/{id} [put]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid product ID"})
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, req)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product updated", Data: product})
}

// DeleteProduct godoc
// @Summary Deactivate product (admin)
// @Tags Admin Catalog
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid product ID"})
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product deleted"})
}
