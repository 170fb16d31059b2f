package models

import (
	"encoding/json"
	"time"
)

// Names of the persisted stores.
const (
	KeyMeasurements = "LifeHub_Measurements"
	KeyGoals        = "LifeHub_Goals"
	KeyGallery      = "LifeHub_Gallery"
	KeyUser         = "LifeHub_RPG_User"
	KeyTemplates    = "lh_templates"
	KeyBackupPrefix = "LifeHub_Backups/"
)

// MeasurementLog is one body-measurement entry, e.g. {"Weight": 61.2}.
type MeasurementLog struct {
	Date time.Time          `json:"date"`
	Data map[string]Measure `json:"data"`
}

// Goals maps a measurement name to its target value.
type Goals map[string]float64

// DefaultGoals is used when no goals were ever stored.
func DefaultGoals() Goals {
	return Goals{"Weight": 40}
}

// Template is a saved exercise definition.
type Template struct {
	DBID   string      `json:"dbId" yaml:"dbId"`
	Name   string      `json:"name" yaml:"name"`
	Type   ScoringType `json:"type" yaml:"type"`
	Target []string    `json:"target" yaml:"target"`
}

// BodyStats are the latest weight and BMI as of a date, formatted for display.
type BodyStats struct {
	Weight string `json:"Weight"`
	BMI    string `json:"BMI"`
}

// Snapshot is the full backup document sent to the replication target.
type Snapshot struct {
	SyncID       string          `json:"syncId"`
	UserProfile  json.RawMessage `json:"userProfile"`
	Measurements json.RawMessage `json:"measurements"`
	Goals        json.RawMessage `json:"goals"`
	Gallery      json.RawMessage `json:"gallery"`
	Templates    json.RawMessage `json:"templates"`
	LastSync     time.Time       `json:"lastSync"`
}
