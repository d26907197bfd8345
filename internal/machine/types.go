package machine

import (
	"errors"
	"time"
)

// Machine represents a registered VNC endpoint.
type Machine struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	IsShared    bool      `json:"is_shared"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sentinel errors for machine operations.
var (
	ErrMachineNotFound = errors.New("machine not found")
)
