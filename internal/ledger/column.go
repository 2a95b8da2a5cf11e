package ledger

import "strings"

// preferred identity column names, checked before the looser contains-"url"
// fallback.
var preferredIdentityNames = []string{"post url", "post_url", "url", "link"}

// cleanHeader strips a BOM prefix, collapses inner whitespace, and lowercases
// a header cell so naming variants compare equal.
func cleanHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// FindIdentityColumn locates the identity column in a header row. Exact
// matches on the preferred names win, then any header containing "url".
// Returns the column index, or false when no candidate exists.
func FindIdentityColumn(headers []string) (int, bool) {
	if len(headers) == 0 {
		return 0, false
	}
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = cleanHeader(h)
	}
	for _, want := range preferredIdentityNames {
		for i, c := range cleaned {
			if c == want {
				return i, true
			}
		}
	}
	for i, c := range cleaned {
		if strings.Contains(c, "url") {
			return i, true
		}
	}
	return 0, false
}
