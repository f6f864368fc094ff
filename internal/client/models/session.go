package models

import "time"

// Session is the signed-in state cached between CLI runs.
type Session struct {
	Email        string
	AccessToken  string
	RefreshToken string
	UpdatedAt    time.Time
}
