package textnorm

import (
	"regexp"
	"strings"
)

const (
	// CanonicalHost is the single authority every known feed host alias is
	// rewritten to; canonical URLs are the identity key for every ledger.
	CanonicalHost = "www.facebook.com"
	// MobileHost is preferred when driving the feed because the mobile
	// rendering loads lighter pages.
	MobileHost = "m.facebook.com"
)

// hostAliases lists authority spellings that refer to the canonical host.
var hostAliases = []string{
	"://m.facebook.",
	"://mbasic.facebook.",
	"://facebook.",
}

var postPattern = regexp.MustCompile(`(?i)/posts/|/permalink/|/story\.php\?story_fbid=|/photo\.php`)

// CanonicalizeURL reduces a raw post link to its identity form: relative links
// are absolutized, http is upgraded to https, host aliases collapse to the
// canonical host, and the query string, fragment, and trailing slash are
// stripped. It never fails and is idempotent.
func CanonicalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "/") {
		u = "https://" + CanonicalHost + u
	}
	if len(u) >= 7 && strings.EqualFold(u[:7], "http://") {
		u = "https://" + u[7:]
	}
	for _, alias := range hostAliases {
		u = strings.Replace(u, alias, "://www.facebook.", 1)
	}
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}

// LooksLikePost reports whether a href structurally resembles a post
// permalink rather than a profile, reaction, or navigation link.
func LooksLikePost(href string) bool {
	return href != "" && postPattern.MatchString(href)
}

// AbsolutizeHref resolves a feed-relative href against the host the feed is
// being driven on. Absolute links pass through untouched.
func AbsolutizeHref(href string, mobile bool) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		host := CanonicalHost
		if mobile {
			host = MobileHost
		}
		return "https://" + host + href
	}
	return href
}

// ToMobile rewrites a canonical-host URL onto the mobile host.
func ToMobile(url string) string {
	url = strings.Replace(url, "https://"+CanonicalHost, "https://"+MobileHost, 1)
	return strings.Replace(url, "http://"+CanonicalHost, "https://"+MobileHost, 1)
}

// ForceChronological appends the feed-sorting parameter so new posts surface
// in publish order during a crawl.
func ForceChronological(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "sorting_setting=CHRONOLOGICAL"
}
