package model

import "time"

// Report is a moderation report raised against a product, review or message.
type Report struct {
	ID         int64      `json:"id"`
	TargetType string     `json:"targetType"`
	TargetID   int64      `json:"targetId"`
	Reason     string     `json:"reason,omitempty"`
	Status     string     `json:"status"`
	ReporterID *int64     `json:"reporterId,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}
