// FILE: internal/core/player.go
package core

import (
	"github.com/google/uuid"
)

// Player identifies who is playing a session
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Name string `json:"name,omitempty" validate:"omitempty,max=32"`
}

// NewPlayer creates a Player from PlayerConfig
func NewPlayer(config PlayerConfig) *Player {
	return &Player{
		ID:   uuid.New().String(),
		Name: config.Name,
	}
}
