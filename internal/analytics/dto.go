// AngelaMos | 2026
// dto.go

package analytics

import (
	"time"
)

type ListEventsParams struct {
	Page     int
	PageSize int
	Name     string
	UserID   string
}

func (p *ListEventsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

func (p *ListEventsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type EventResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Properties Properties `json:"properties"`
	CreatedAt  time.Time  `json:"created_at"`
}

func ToEventResponseList(events []Event) []EventResponse {
	responses := make([]EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, EventResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			Name:       e.Name,
			Properties: e.Properties,
			CreatedAt:  e.CreatedAt,
		})
	}
	return responses
}
