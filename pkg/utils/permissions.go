package utils

import (
	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/pkg/database"
)

// IsAdmin checks if the user with given ID is an admin user
func IsAdmin(userID uint) bool {
	var user models.User
	err := database.DB.First(&user, userID).Error
	if err != nil {
		return false
	}
	return user.Username == "admin"
}

// HasPermissionOnProject checks if user has permission on a project (owner or admin)
func HasPermissionOnProject(userID uint, projectID uint) bool {
	if IsAdmin(userID) {
		return true
	}

	var project models.Project
	err := database.DB.Where("id = ? AND user_id = ? AND status = ?", projectID, userID, 1).First(&project).Error
	return err == nil
}

// HasPermissionOnTask checks if user has permission on a scrape task (owner, project owner, or admin)
func HasPermissionOnTask(userID uint, taskID uint) bool {
	if IsAdmin(userID) {
		return true
	}

	var task models.ScrapeTask
	err := database.DB.Preload("Project").Where("id = ? AND status = ?", taskID, 1).First(&task).Error
	if err != nil {
		return false
	}

	return task.UserID == userID || task.Project.UserID == userID
}
