package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type User struct {
	BaseModel
	Username string `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password string `json:"-" gorm:"size:255;not null"`
	Avatar   string `json:"avatar" gorm:"size:255"`
	Status   int    `json:"status" gorm:"default:1"` // 1:active, 0:inactive
}

type Project struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;not null"`
	Description string `json:"description" gorm:"size:500"`
	UserID      uint   `json:"user_id" gorm:"not null"`
	User        User   `json:"user" gorm:"foreignKey:UserID"`
	Status      int    `json:"status" gorm:"default:1"`
}

// Site is a target to record against.
type Site struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;not null"`
	Description string `json:"description" gorm:"size:500"`
	BaseURL     string `json:"base_url" gorm:"size:500;not null"`
	Headers     string `json:"headers" gorm:"type:text"` // JSON format
	Status      int    `json:"status" gorm:"default:1"`
}

// Device is a viewport/user-agent preset for browser emulation.
type Device struct {
	BaseModel
	Name      string `json:"name" gorm:"size:100;not null"`
	Width     int    `json:"width" gorm:"not null"`
	Height    int    `json:"height" gorm:"not null"`
	UserAgent string `json:"user_agent" gorm:"size:500"`
	IsDefault bool   `json:"is_default" gorm:"default:false"`
	Status    int    `json:"status" gorm:"default:1"`
}

// ScrapeStep is one recorded step of a scraping workflow: a text capture, a
// list capture with its field template, or a pagination selection.
type ScrapeStep struct {
	Type         string                 `json:"type"` // text, list, pagination
	Label        string                 `json:"label,omitempty"`
	Value        string                 `json:"value,omitempty"`
	Selector     string                 `json:"selector,omitempty"`
	ListSelector string                 `json:"list_selector,omitempty"`
	ListID       int64                  `json:"list_id,omitempty"`
	Fields       map[string]interface{} `json:"fields,omitempty"`
	Pagination   map[string]interface{} `json:"pagination,omitempty"`
	Meta         map[string]interface{} `json:"meta,omitempty"`
	Timestamp    int64                  `json:"timestamp"`
}

// ScrapeTask is a saved recording: the workflow a user captured against a
// site, ready to be exported or executed elsewhere.
type ScrapeTask struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:200;not null"`
	Description string  `json:"description" gorm:"size:1000"`
	ProjectID   uint    `json:"project_id" gorm:"not null"`
	Project     Project `json:"project" gorm:"foreignKey:ProjectID"`
	SiteID      uint    `json:"site_id" gorm:"not null"`
	Site        Site    `json:"site" gorm:"foreignKey:SiteID"`
	DeviceID    uint    `json:"device_id" gorm:"not null"`
	Device      Device  `json:"device" gorm:"foreignKey:DeviceID"`
	Steps       string  `json:"steps" gorm:"type:longtext"` // JSON format ScrapeStep array
	Tags        string  `json:"tags" gorm:"size:500"`
	Status      int     `json:"status" gorm:"default:1"`
	UserID      uint    `json:"user_id" gorm:"not null"`
	User        User    `json:"user" gorm:"foreignKey:UserID"`
}

func (t *ScrapeTask) GetSteps() ([]ScrapeStep, error) {
	var steps []ScrapeStep
	if t.Steps == "" {
		return steps, nil
	}
	err := json.Unmarshal([]byte(t.Steps), &steps)
	return steps, err
}

// RecordingSession is the durable footprint of an in-progress recording. The
// list selector is the single piece of state that survives a reload; fields,
// list id and pagination selector are re-derived.
type RecordingSession struct {
	BaseModel
	SessionID    string `json:"session_id" gorm:"uniqueIndex;size:64;not null"`
	UserID       uint   `json:"user_id" gorm:"not null"`
	SiteID       uint   `json:"site_id" gorm:"not null"`
	DeviceID     uint   `json:"device_id" gorm:"not null"`
	ListSelector string `json:"list_selector" gorm:"size:1000"`
	Status       int    `json:"status" gorm:"default:1"` // 1:active, 0:closed
}
