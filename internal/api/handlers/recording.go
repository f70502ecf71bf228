package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"scrapeflow/backend/internal/config"
	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/internal/protocol"
	"scrapeflow/backend/internal/recorder"
	"scrapeflow/backend/pkg/database"
	"scrapeflow/backend/pkg/response"
	"scrapeflow/backend/pkg/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func StartRecording(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var req struct {
		SiteID   uint `json:"site_id" binding:"required"`
		DeviceID uint `json:"device_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var site models.Site
	err := database.DB.Where("status = ?", 1).First(&site, req.SiteID).Error
	if err != nil {
		response.NotFound(c, "site not found")
		return
	}

	var device models.Device
	err = database.DB.Where("status = ?", 1).First(&device, req.DeviceID).Error
	if err != nil {
		response.NotFound(c, "device not found")
		return
	}

	cfg, _ := config.LoadConfig()
	if recorder.Manager.Count() >= cfg.Chrome.MaxSessions {
		response.InternalServerError(c, "too many active recording sessions")
		return
	}

	sessionID := uuid.New().String()

	// Durable session row first: the recorder's selector store writes the
	// list selector onto it as soon as one is established.
	session := models.RecordingSession{
		SessionID: sessionID,
		UserID:    userID.(uint),
		SiteID:    site.ID,
		DeviceID:  device.ID,
		Status:    1,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		response.InternalServerError(c, "failed to create recording session")
		return
	}

	deviceInfo := recorder.DeviceInfo{
		Width:     device.Width,
		Height:    device.Height,
		UserAgent: device.UserAgent,
	}
	opts := recorder.Options{
		Headless:      cfg.Chrome.HeadlessMode,
		FrameInterval: time.Duration(cfg.Chrome.FrameIntervalMs) * time.Millisecond,
		PollInterval:  time.Duration(cfg.Chrome.PollIntervalMs) * time.Millisecond,
	}

	err = recorder.Manager.StartRecording(sessionID, strconv.Itoa(int(session.UserID)), site.BaseURL, deviceInfo, opts)
	if err != nil {
		database.DB.Delete(&session)
		response.InternalServerError(c, "failed to start recording: "+err.Error())
		return
	}

	response.SuccessWithMessage(c, "recording started", gin.H{
		"session_id": sessionID,
	})
}

func StopRecording(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := recorder.Manager.StopRecording(req.SessionID)
	if err != nil {
		response.InternalServerError(c, "failed to stop recording: "+err.Error())
		return
	}

	response.SuccessWithMessage(c, "recording stopped", nil)
}

func GetRecordingStatus(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}

	isRecording, steps, err := recorder.Manager.GetRecordingStatus(sessionID)
	if err != nil {
		response.NotFound(c, "recording session not found")
		return
	}

	if steps == nil {
		steps = make([]models.ScrapeStep, 0)
	}

	result := gin.H{
		"is_recording": isRecording,
		"steps":        steps,
	}
	if rec, ok := recorder.Manager.GetRecorder(sessionID); ok {
		result["list_session"] = rec.Session()
	}

	response.Success(c, result)
}

func SaveRecording(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var req struct {
		SessionID   string `json:"session_id" binding:"required"`
		Name        string `json:"name" binding:"required,min=1,max=200"`
		Description string `json:"description" binding:"max=1000"`
		ProjectID   uint   `json:"project_id" binding:"required"`
		SiteID      uint   `json:"site_id" binding:"required"`
		DeviceID    uint   `json:"device_id" binding:"required"`
		Tags        string `json:"tags" binding:"max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if !utils.HasPermissionOnProject(userID.(uint), req.ProjectID) {
		response.NotFound(c, "project not found or no permission")
		return
	}

	isRecording, steps, err := recorder.Manager.GetRecordingStatus(req.SessionID)
	if err != nil {
		response.NotFound(c, "recording session not found")
		return
	}

	if isRecording {
		response.BadRequest(c, "stop the recording before saving")
		return
	}

	if len(steps) == 0 {
		response.BadRequest(c, "no steps were recorded")
		return
	}

	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		response.InternalServerError(c, "failed to encode steps")
		return
	}

	task := models.ScrapeTask{
		Name:        req.Name,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		SiteID:      req.SiteID,
		DeviceID:    req.DeviceID,
		Steps:       string(stepsJSON),
		Tags:        req.Tags,
		Status:      1,
		UserID:      userID.(uint),
	}

	err = database.DB.Create(&task).Error
	if err != nil {
		response.InternalServerError(c, "failed to save task")
		return
	}

	database.DB.Preload("Project").Preload("Site").Preload("Device").Preload("User").
		First(&task, task.ID)
	task.User.Password = ""

	recorder.Manager.CleanupRecording(req.SessionID)

	response.SuccessWithMessage(c, "scrape task saved", task)
}

func RecordingWebSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	rec, exists := recorder.Manager.GetRecorder(sessionID)
	if !exists {
		conn.WriteJSON(gin.H{"error": "recording session not found"})
		return
	}

	rec.SetWebSocketConnection(conn)
	defer rec.SetWebSocketConnection(nil)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error: %v", err)
			break
		}

		var msg protocol.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("invalid websocket message: %v", err)
			continue
		}
		rec.HandleMessage(msg)
	}
}
