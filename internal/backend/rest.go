package backend

import (
	"context"
	"net/http"

	"elretiro/console/internal/models"
)

// InsertProfile writes one profile row as the signed-in user, so row-level
// policies on the table apply.
func (c *Client) InsertProfile(ctx context.Context, accessToken string, profile models.Profile) error {
	row := map[string]any{
		"id":           profile.ID,
		"email":        profile.Email,
		"display_name": profile.DisplayName,
		"phone":        profile.Phone,
		"role":         string(profile.Role),
	}

	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + c.profileTable,
		apiKey: c.anonKey,
		bearer: accessToken,
		prefer: "return=minimal",
		body:   row,
	}, nil)
}
