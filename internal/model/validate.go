package model

import "strings"

// MaxImages bounds the number of images attached to a single post.
const MaxImages = 10

// ValidateNewPost checks the intake of a create-post request.
func ValidateNewPost(images []string, caption string) error {
	if len(images) == 0 {
		return NewValidationError("images", "at least one image is required")
	}
	if len(images) > MaxImages {
		return NewValidationError("images", "at most 10 images are allowed")
	}
	for _, img := range images {
		if strings.TrimSpace(img) == "" {
			return NewValidationError("images", "image reference must not be empty")
		}
	}
	if strings.TrimSpace(caption) == "" {
		return NewValidationError("caption", "caption must not be empty")
	}
	return nil
}

// ValidateProfile checks a profile edit.
func ValidateProfile(u ProfileUpdate) error {
	if strings.TrimSpace(u.Username) == "" {
		return NewValidationError("username", "username cannot be empty")
	}
	return nil
}

// ValidateComment checks comment text.
func ValidateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError("text", "comment must not be empty")
	}
	return nil
}
