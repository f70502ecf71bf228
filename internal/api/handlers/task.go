package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/pkg/database"
	"scrapeflow/backend/pkg/response"
	"scrapeflow/backend/pkg/utils"
)

func GetTasks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	query := database.DB.Model(&models.ScrapeTask{}).Where("status = ?", 1)

	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if keyword := c.Query("keyword"); keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	var total int64
	query.Count(&total)

	var tasks []models.ScrapeTask
	offset := (page - 1) * pageSize
	err := query.Preload("Project").Preload("Site").Preload("Device").Preload("User").
		Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		response.InternalServerError(c, "failed to list tasks")
		return
	}

	for i := range tasks {
		tasks[i].User.Password = ""
	}

	response.Page(c, tasks, total, page, pageSize)
}

func GetTask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var task models.ScrapeTask
	err = database.DB.Preload("Project").Preload("Site").Preload("Device").Preload("User").
		Where("status = ?", 1).First(&task, id).Error
	if err != nil {
		response.NotFound(c, "task not found")
		return
	}

	task.User.Password = ""
	response.Success(c, task)
}

func UpdateTask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	if !utils.HasPermissionOnTask(userID.(uint), uint(id)) {
		response.NotFound(c, "task not found or no permission")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"omitempty,min=1,max=200"`
		Description string `json:"description" binding:"max=1000"`
		Steps       string `json:"steps"`
		Tags        string `json:"tags" binding:"max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var task models.ScrapeTask
	err = database.DB.Where("id = ? AND status = ?", id, 1).First(&task).Error
	if err != nil {
		response.NotFound(c, "task not found")
		return
	}

	if req.Name != "" {
		task.Name = req.Name
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Steps != "" {
		task.Steps = req.Steps
	}
	if req.Tags != "" {
		task.Tags = req.Tags
	}

	err = database.DB.Save(&task).Error
	if err != nil {
		response.InternalServerError(c, "failed to update task")
		return
	}

	response.SuccessWithMessage(c, "task updated", task)
}

func DeleteTask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	if !utils.HasPermissionOnTask(userID.(uint), uint(id)) {
		response.NotFound(c, "task not found or no permission")
		return
	}

	var task models.ScrapeTask
	err = database.DB.Where("id = ? AND status = ?", id, 1).First(&task).Error
	if err != nil {
		response.NotFound(c, "task not found")
		return
	}

	task.Status = 0
	err = database.DB.Save(&task).Error
	if err != nil {
		response.InternalServerError(c, "failed to delete task")
		return
	}

	response.SuccessWithMessage(c, "task deleted", nil)
}
