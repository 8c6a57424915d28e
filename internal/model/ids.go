package model

import "github.com/google/uuid"

// NewID returns a fresh identifier for posts, comments, notifications and stories.
func NewID() string { return uuid.NewString() }
