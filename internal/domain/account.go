package domain

import "time"

// Account represents a phone line whose inbound calls are screened
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Config    Config    `json:"config"`
	Version   string    `json:"version"` // changes on every config update
	UpdatedAt time.Time `json:"updated_at"`
}
