// Package models defines server-side data models persisted in the database.
package models

import "time"

// Group names. New users land in GroupUser.
const (
	GroupUser      = "USER"
	GroupModerator = "MODERATOR"
	GroupAdmin     = "ADMIN"
)

// User is an account. It is created inactive and flipped active exactly
// once by activation.
type User struct {
	ID             string
	Email          string
	HashedPassword string
	IsActive       bool
	GroupID        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserGroup is a named role bucket.
type UserGroup struct {
	ID   int64
	Name string
}
