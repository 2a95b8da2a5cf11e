package classify

import "strings"

// AdminMarker is the inline token moderators leave in comment text.
const AdminMarker = "#admin"

// adminRoles are the free-text role values treated as staff.
var adminRoles = map[string]struct{}{
	"admin":           {},
	"moderator":       {},
	"group admin":     {},
	"group moderator": {},
}

// adminRule is one independent admin signal. Rules run in order and
// short-circuit on the first match.
type adminRule struct {
	name  string
	match func(Comment, Roster) bool
}

var adminRules = []adminRule{
	{
		name: "roster",
		match: func(c Comment, roster Roster) bool {
			return roster.Contains(c.Commenter)
		},
	},
	{
		name: "structured-flag",
		match: func(c Comment, _ Roster) bool {
			return c.GroupStaff || c.IsAdmin || c.IsModerator
		},
	},
	{
		name: "role",
		match: func(c Comment, _ Roster) bool {
			role := strings.ToLower(strings.TrimSpace(c.Role))
			_, ok := adminRoles[role]
			return ok
		},
	},
	{
		name: "badge",
		match: func(c Comment, _ Roster) bool {
			for _, b := range c.Badges {
				label := strings.ToLower(b.Label)
				if strings.Contains(label, "admin") || strings.Contains(label, "moderator") {
					return true
				}
			}
			return false
		},
	},
	{
		name: "commenter-info",
		match: func(c Comment, _ Roster) bool {
			info := c.CommenterInfo
			return info.IsAdmin || info.IsModerator || info.GroupStaff
		},
	},
	{
		name: "marker",
		match: func(c Comment, _ Roster) bool {
			return HasAdminMarker(c.Text)
		},
	},
}

// HasAdminMarker reports whether text carries the inline admin token.
func HasAdminMarker(text string) bool {
	return text != "" && strings.Contains(strings.ToLower(text), AdminMarker)
}

// IsAdminLike reports whether any admin signal holds for the comment.
func IsAdminLike(c Comment, roster Roster) bool {
	for _, rule := range adminRules {
		if rule.match(c, roster) {
			return true
		}
	}
	return false
}
