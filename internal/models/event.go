package models

import "time"

type AuthEventType string

const (
	AuthEventSignedIn       AuthEventType = "session.signed_in"
	AuthEventSignedOut      AuthEventType = "session.signed_out"
	AuthEventTokenRefreshed AuthEventType = "session.token_refreshed"
	AuthEventUserCreated    AuthEventType = "user.created"
)

type AuthEvent struct {
	Type      AuthEventType `json:"type"`
	UserID    string        `json:"userId"`
	Email     string        `json:"email"`
	SessionID string        `json:"sessionId"`
	At        time.Time     `json:"at"`
}

type DashboardStats struct {
	Available    bool      `json:"available"`
	Reservations int64     `json:"reservations"`
	Visitors     int64     `json:"visitors"`
	SignIns      int64     `json:"signIns"`
	ComputedAt   time.Time `json:"computedAt"`
}
