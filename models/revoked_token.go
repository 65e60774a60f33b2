package models

import "time"

// RevokedToken marks a JWT id as logged out until the token would have expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:64" json:"jti"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// All returns every model the application migrates.
func All() []interface{} {
	return []interface{}{&User{}, &Article{}, &Comment{}, &RevokedToken{}}
}
