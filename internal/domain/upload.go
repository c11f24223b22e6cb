package domain

import "time"

type Upload struct {
	ID          string         `json:"id"`
	Guild       string         `json:"guild"`
	Label       string         `json:"label,omitempty"`
	UploadedAt  time.Time      `json:"uploadedAt"`
	PlayerCount int            `json:"playerCount"`
	Players     []PlayerRecord `json:"players,omitempty"`
}

// UploadRequest is the body accepted when storing a new roster.
type UploadRequest struct {
	Guild   string         `json:"guild" validate:"required,max=64"`
	Label   string         `json:"label,omitempty" validate:"max=128"`
	Players []PlayerRecord `json:"players" validate:"required,min=1,max=500,dive"`
}

// StatsRequest computes stats without persisting anything.
type StatsRequest struct {
	Guild   string         `json:"guild" validate:"max=64"`
	Players []PlayerRecord `json:"players" validate:"required,min=1,max=500,dive"`
}

type GearscoreRequest struct {
	AP  Stat `json:"ap"`
	AAP Stat `json:"aap"`
	DP  Stat `json:"dp"`
}

type BatchScrapeRequest struct {
	Targets []ScrapeTarget `json:"targets" validate:"required,min=1,max=20,dive"`
}
