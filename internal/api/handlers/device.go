package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/pkg/database"
	"scrapeflow/backend/pkg/response"
)

func GetDevices(c *gin.Context) {
	var devices []models.Device
	err := database.DB.Where("status = ?", 1).Order("is_default DESC, name ASC").Find(&devices).Error
	if err != nil {
		response.InternalServerError(c, "failed to list devices")
		return
	}

	response.Success(c, devices)
}

func CreateDevice(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required,min=1,max=100"`
		Width     int    `json:"width" binding:"required,min=1"`
		Height    int    `json:"height" binding:"required,min=1"`
		UserAgent string `json:"user_agent" binding:"max=500"`
		IsDefault bool   `json:"is_default"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var existingDevice models.Device
	err := database.DB.Where("name = ? AND status = ?", req.Name, 1).First(&existingDevice).Error
	if err == nil {
		response.BadRequest(c, "device name already exists")
		return
	}

	device := models.Device{
		Name:      req.Name,
		Width:     req.Width,
		Height:    req.Height,
		UserAgent: req.UserAgent,
		IsDefault: req.IsDefault,
		Status:    1,
	}

	err = database.DB.Create(&device).Error
	if err != nil {
		response.InternalServerError(c, "failed to create device")
		return
	}

	response.SuccessWithMessage(c, "device created", device)
}

func GetDevice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}

	var device models.Device
	err = database.DB.Where("status = ?", 1).First(&device, id).Error
	if err != nil {
		response.NotFound(c, "device not found")
		return
	}

	response.Success(c, device)
}

func UpdateDevice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}

	var req struct {
		Name      string `json:"name" binding:"omitempty,min=1,max=100"`
		Width     int    `json:"width" binding:"omitempty,min=1"`
		Height    int    `json:"height" binding:"omitempty,min=1"`
		UserAgent string `json:"user_agent" binding:"max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var device models.Device
	err = database.DB.Where("id = ? AND status = ?", id, 1).First(&device).Error
	if err != nil {
		response.NotFound(c, "device not found")
		return
	}

	if req.Name != "" {
		device.Name = req.Name
	}
	if req.Width > 0 {
		device.Width = req.Width
	}
	if req.Height > 0 {
		device.Height = req.Height
	}
	if req.UserAgent != "" {
		device.UserAgent = req.UserAgent
	}

	err = database.DB.Save(&device).Error
	if err != nil {
		response.InternalServerError(c, "failed to update device")
		return
	}

	response.SuccessWithMessage(c, "device updated", device)
}

func DeleteDevice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}

	var device models.Device
	err = database.DB.Where("id = ? AND status = ?", id, 1).First(&device).Error
	if err != nil {
		response.NotFound(c, "device not found")
		return
	}

	device.Status = 0
	err = database.DB.Save(&device).Error
	if err != nil {
		response.InternalServerError(c, "failed to delete device")
		return
	}

	response.SuccessWithMessage(c, "device deleted", nil)
}
