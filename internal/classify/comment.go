package classify

import (
	"encoding/json"
	"strings"

	"snakewatch/internal/textnorm"
)

// Badge is one moderator/admin badge attached to a comment. Collaborators
// emit badges either as bare strings or as objects with a label or name
// field, so decoding accepts both.
type Badge struct {
	Label string
}

// UnmarshalJSON accepts `"Admin"`, `{"label":"Admin"}`, and `{"name":"Admin"}`.
func (b *Badge) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		b.Label = label
		return nil
	}
	var obj struct {
		Label string `json:"label"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Tolerate unknown badge shapes; an unreadable badge is no signal.
		b.Label = ""
		return nil
	}
	if obj.Label != "" {
		b.Label = obj.Label
	} else {
		b.Label = obj.Name
	}
	return nil
}

// CommenterInfo carries structured admin signals nested under the commenter.
type CommenterInfo struct {
	IsAdmin     bool `json:"is_admin"`
	IsModerator bool `json:"is_moderator"`
	GroupStaff  bool `json:"group_staff"`
}

// Comment is one comment as extracted from a post.
type Comment struct {
	Commenter     string        `json:"commenter"`
	Text          string        `json:"text"`
	Role          string        `json:"role"`
	Badges        []Badge       `json:"badges"`
	IsAdmin       bool          `json:"is_admin"`
	IsModerator   bool          `json:"is_moderator"`
	GroupStaff    bool          `json:"group_staff"`
	CommenterInfo CommenterInfo `json:"commenter_info"`
}

// Collectible reports whether the comment carries any usable content. A
// comment with neither commenter nor text is not collectible.
func (c Comment) Collectible() bool {
	return strings.TrimSpace(c.Commenter) != "" || strings.TrimSpace(c.Text) != ""
}

// NormalizedCommenter returns the display name in comparison form.
func (c Comment) NormalizedCommenter() string {
	return textnorm.Normalize(c.Commenter)
}

// NormalizedText returns the comment body in comparison form.
func (c Comment) NormalizedText() string {
	return textnorm.Normalize(c.Text)
}

// PostRecord is the transient view of one post handed to classification.
type PostRecord struct {
	URL      string    `json:"url"`
	Comments []Comment `json:"comments"`
}

// PostDetails is the richer post description fetched only for outcomes that
// keep full detail in their ledger.
type PostDetails struct {
	URL     string `json:"url"`
	Poster  string `json:"poster"`
	Text    string `json:"text"`
	DateISO string `json:"date_iso"`
}
