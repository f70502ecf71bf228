package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/pkg/database"
	"scrapeflow/backend/pkg/response"
)

func GetProjects(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	var projects []models.Project
	var total int64

	database.DB.Model(&models.Project{}).Where("status = ?", 1).Count(&total)

	offset := (page - 1) * pageSize
	err := database.DB.Preload("User").Where("status = ?", 1).
		Offset(offset).Limit(pageSize).Find(&projects).Error
	if err != nil {
		response.InternalServerError(c, "failed to list projects")
		return
	}

	for i := range projects {
		projects[i].User.Password = ""
	}

	response.Page(c, projects, total, page, pageSize)
}

func CreateProject(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=100"`
		Description string `json:"description" binding:"max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var existingProject models.Project
	err := database.DB.Where("name = ? AND user_id = ? AND status = ?", req.Name, userID, 1).
		First(&existingProject).Error
	if err == nil {
		response.BadRequest(c, "project name already exists")
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		UserID:      userID.(uint),
		Status:      1,
	}

	err = database.DB.Create(&project).Error
	if err != nil {
		response.InternalServerError(c, "failed to create project")
		return
	}

	database.DB.Preload("User").First(&project, project.ID)
	project.User.Password = ""

	response.SuccessWithMessage(c, "project created", project)
}

func GetProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var project models.Project
	err = database.DB.Preload("User").Where("status = ?", 1).First(&project, id).Error
	if err != nil {
		response.NotFound(c, "project not found")
		return
	}

	project.User.Password = ""
	response.Success(c, project)
}

func UpdateProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"omitempty,min=1,max=100"`
		Description string `json:"description" binding:"max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var project models.Project
	err = database.DB.Where("id = ? AND user_id = ? AND status = ?", id, userID, 1).
		First(&project).Error
	if err != nil {
		response.NotFound(c, "project not found or no permission")
		return
	}

	if req.Name != "" && req.Name != project.Name {
		var existingProject models.Project
		err := database.DB.Where("name = ? AND user_id = ? AND id != ? AND status = ?",
			req.Name, userID, id, 1).First(&existingProject).Error
		if err == nil {
			response.BadRequest(c, "project name already exists")
			return
		}
		project.Name = req.Name
	}

	if req.Description != "" {
		project.Description = req.Description
	}

	err = database.DB.Save(&project).Error
	if err != nil {
		response.InternalServerError(c, "failed to update project")
		return
	}

	database.DB.Preload("User").First(&project, project.ID)
	project.User.Password = ""

	response.SuccessWithMessage(c, "project updated", project)
}

func DeleteProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var project models.Project
	err = database.DB.Where("id = ? AND user_id = ? AND status = ?", id, userID, 1).
		First(&project).Error
	if err != nil {
		response.NotFound(c, "project not found or no permission")
		return
	}

	// Soft delete by setting status to 0
	project.Status = 0
	err = database.DB.Save(&project).Error
	if err != nil {
		response.InternalServerError(c, "failed to delete project")
		return
	}

	response.SuccessWithMessage(c, "project deleted", nil)
}
