package request

import "github.com/mcoot/brettonwoods/internal/model"

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for creating a room. Config fields
// left out keep the server's room defaults.
type CreateRoomRequest struct {
	Name   string                     `json:"name"`
	Config *model.RoomConfigOverrides `json:"config,omitempty"`
}

// SeatRequest is the request body for taking a country
type SeatRequest struct {
	Country model.Country `json:"country"`
}

// ReadyRequest is the request body for toggling readiness
type ReadyRequest struct {
	Ready *bool `json:"ready,omitempty"`
}

// VoteRequest is the request body for voting on the current issue
type VoteRequest struct {
	Choice string `json:"choice"`
}

// PolicyRequest is the request body for setting this year's policy levers.
// Every lever is required.
type PolicyRequest struct {
	CentralBankRate *float64 `json:"cb_rate"`
	ExchangeRate    *float64 `json:"exchange_rate"`
	TariffRate      *float64 `json:"tariff_rate"`
}

// Policy converts the request to a model policy, reporting false if any
// lever is missing
func (p PolicyRequest) Policy() (model.Policy, bool) {
	if p.CentralBankRate == nil || p.ExchangeRate == nil || p.TariffRate == nil {
		return model.Policy{}, false
	}
	return model.Policy{
		CentralBankRate: *p.CentralBankRate,
		ExchangeRate:    *p.ExchangeRate,
		TariffRate:      *p.TariffRate,
	}, true
}
