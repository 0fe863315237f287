package marinetraffic

import (
	"context"

	"IntelPull/internal/domain/models"
)

const note = "Navy tracking requires marine traffic API integration"

// Client is a placeholder vessel source. No marine traffic provider is wired
// yet, so every fetch returns an empty report with an explanatory note.
type Client struct{}

func New() *Client { return &Client{} }

// Fetch always succeeds with the capability-gap note.
func (c *Client) Fetch(ctx context.Context) *models.VesselReport {
	return &models.VesselReport{Note: note, Vessels: []string{}}
}
