// Package models defines the creator-side secret record.
package models

import (
	"time"

	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/atinyakov/GophShare/internal/share"
)

// Secret is a secret as kept in the creator's own list. Recipients never see
// this record; they only receive the share link built from it.
type Secret struct {
	// ID is the unique identifier for the secret.
	ID string `json:"id"`
	// Title is the user-provided label, also carried in the share link.
	Title string `json:"title"`
	// Envelope is the base64 iv||ciphertext of the content.
	Envelope string `json:"envelope"`
	// Key is the base64 raw AES key. It leaves this record only as a URL fragment.
	Key string `json:"key"`
	// BurnAfterView marks the secret as intended for one viewing.
	BurnAfterView bool `json:"burnAfterView"`
	// AutoDestroyAfter is the lifetime in seconds, 0 for never.
	AutoDestroyAfter lifecycle.AutoDestroy `json:"autoDestroyAfter"`
	// ViewCount counts how often the creator revealed their own copy.
	ViewCount int `json:"viewCount"`
	// CreatedAt is the creation instant.
	CreatedAt time.Time `json:"createdAt"`
}

// Policy returns the lifecycle policy of s.
func (s Secret) Policy() lifecycle.Policy {
	return lifecycle.Policy{CreatedAt: s.CreatedAt, AutoDestroy: s.AutoDestroyAfter}
}

// Payload returns the part of s that travels in a share link.
func (s Secret) Payload() share.Payload {
	return share.Payload{Title: s.Title, Envelope: s.Envelope, BurnAfterView: s.BurnAfterView}
}
