package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Preview returns the first n characters of s, followed by "..." when s is longer.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// SegmentKind tells plain caption text apart from hashtags.
type SegmentKind string

const (
	SegmentText    SegmentKind = "text"
	SegmentHashtag SegmentKind = "hashtag"
)

// Segment is one word of a caption, with its trailing space kept.
type Segment struct {
	Kind    SegmentKind `json:"type"`
	Content string      `json:"content"`
}

// ParseCaption splits a caption on spaces and tags words starting with '#'.
func ParseCaption(caption string) []Segment {
	words := strings.Split(caption, " ")
	out := make([]Segment, 0, len(words))
	for i, w := range words {
		content := w
		if i < len(words)-1 {
			content += " "
		}
		kind := SegmentText
		if strings.HasPrefix(w, "#") {
			kind = SegmentHashtag
		}
		out = append(out, Segment{Kind: kind, Content: content})
	}
	return out
}

// Hashtags returns the lowercase tags of a caption without the leading '#'.
func Hashtags(caption string) []string {
	var out []string
	for _, s := range ParseCaption(caption) {
		if s.Kind != SegmentHashtag {
			continue
		}
		tag := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s.Content, "#")))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
