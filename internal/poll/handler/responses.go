package handler

import "pollcast/internal/poll/models"

// ListPollsResponse is the body of GET /api/polls.
type ListPollsResponse struct {
	Polls []models.PollSummary `json:"polls"`
}
