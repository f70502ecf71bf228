package handlers

import (
	"github.com/gin-gonic/gin"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/pkg/database"
	"scrapeflow/backend/pkg/response"
	"scrapeflow/backend/pkg/utils"
)

func GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var user models.User
	err := database.DB.First(&user, userID).Error
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	user.Password = ""
	response.Success(c, user)
}

func UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var req struct {
		Email    string `json:"email" binding:"omitempty,email"`
		Avatar   string `json:"avatar" binding:"max=255"`
		Password string `json:"password" binding:"omitempty,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var user models.User
	err := database.DB.First(&user, userID).Error
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	if req.Email != "" && req.Email != user.Email {
		var existingUser models.User
		err := database.DB.Where("email = ? AND id != ?", req.Email, userID).First(&existingUser).Error
		if err == nil {
			response.BadRequest(c, "email already registered")
			return
		}
		user.Email = req.Email
	}

	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if req.Password != "" {
		hashedPassword, err := utils.HashPassword(req.Password)
		if err != nil {
			response.InternalServerError(c, "failed to hash password")
			return
		}
		user.Password = hashedPassword
	}

	err = database.DB.Save(&user).Error
	if err != nil {
		response.InternalServerError(c, "failed to update profile")
		return
	}

	user.Password = ""
	response.SuccessWithMessage(c, "profile updated", user)
}
