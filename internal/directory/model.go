// Package directory exposes the salon client book: read-only projections of
// backend-owned rows, plus creation through the bridge function. Everywhere
// else in the wizard a client is read-only.
package directory

import (
	"errors"
	"strings"
	"time"
)

// Client is a salon client projection.
type Client struct {
	ID                 string     `json:"id"`
	PhorestClientID    string     `json:"phorest_client_id"`
	Name               string     `json:"name"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	PreferredStylistID string     `json:"preferred_stylist_id,omitempty"`
	IsBanned           bool       `json:"is_banned"`
	BanReason          string     `json:"ban_reason,omitempty"`
	VisitCount         int        `json:"visit_count"`
	TotalSpend         float64    `json:"total_spend"`
	LastVisit          *time.Time `json:"last_visit,omitempty"`
}

// CreateClientInput is the request body for creating a client.
type CreateClientInput struct {
	BranchID           string `json:"branch_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Gender             string `json:"gender,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Notes              string `json:"notes,omitempty"`
	Birthday           string `json:"birthday,omitempty"`
	PreferredStylistID string `json:"preferred_stylist_id,omitempty"`
}

// Validate checks required fields.
func (in *CreateClientInput) Validate() error {
	if strings.TrimSpace(in.BranchID) == "" {
		return errors.New("directory: branch_id is required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return errors.New("directory: first_name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return errors.New("directory: last_name is required")
	}
	return nil
}
