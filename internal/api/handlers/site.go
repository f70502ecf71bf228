package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/pkg/database"
	"scrapeflow/backend/pkg/response"
)

func GetSites(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	var sites []models.Site
	var total int64

	database.DB.Model(&models.Site{}).Where("status = ?", 1).Count(&total)

	offset := (page - 1) * pageSize
	err := database.DB.Where("status = ?", 1).
		Offset(offset).Limit(pageSize).Find(&sites).Error
	if err != nil {
		response.InternalServerError(c, "failed to list sites")
		return
	}

	response.Page(c, sites, total, page, pageSize)
}

func CreateSite(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=100"`
		Description string `json:"description" binding:"max=500"`
		BaseURL     string `json:"base_url" binding:"required,url"`
		Headers     string `json:"headers"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	site := models.Site{
		Name:        req.Name,
		Description: req.Description,
		BaseURL:     req.BaseURL,
		Headers:     req.Headers,
		Status:      1,
	}

	err := database.DB.Create(&site).Error
	if err != nil {
		response.InternalServerError(c, "failed to create site")
		return
	}

	response.SuccessWithMessage(c, "site created", site)
}

func GetSite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid site id")
		return
	}

	var site models.Site
	err = database.DB.Where("status = ?", 1).First(&site, id).Error
	if err != nil {
		response.NotFound(c, "site not found")
		return
	}

	response.Success(c, site)
}

func UpdateSite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid site id")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"omitempty,min=1,max=100"`
		Description string `json:"description" binding:"max=500"`
		BaseURL     string `json:"base_url" binding:"omitempty,url"`
		Headers     string `json:"headers"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var site models.Site
	err = database.DB.Where("id = ? AND status = ?", id, 1).First(&site).Error
	if err != nil {
		response.NotFound(c, "site not found")
		return
	}

	if req.Name != "" {
		site.Name = req.Name
	}
	if req.Description != "" {
		site.Description = req.Description
	}
	if req.BaseURL != "" {
		site.BaseURL = req.BaseURL
	}
	if req.Headers != "" {
		site.Headers = req.Headers
	}

	err = database.DB.Save(&site).Error
	if err != nil {
		response.InternalServerError(c, "failed to update site")
		return
	}

	response.SuccessWithMessage(c, "site updated", site)
}

func DeleteSite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid site id")
		return
	}

	var site models.Site
	err = database.DB.Where("id = ? AND status = ?", id, 1).First(&site).Error
	if err != nil {
		response.NotFound(c, "site not found")
		return
	}

	site.Status = 0
	err = database.DB.Save(&site).Error
	if err != nil {
		response.InternalServerError(c, "failed to delete site")
		return
	}

	response.SuccessWithMessage(c, "site deleted", nil)
}
