package businesses

import (
	"strings"

	"github.com/google/uuid"
)

const maxSlugLength = 80

// slugify lowers a listing name into a URL-safe slug. Non-alphanumeric runs
// collapse to a single hyphen.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		slug = "business"
	}
	return slug
}

// uniqueSlug appends a short random suffix so a colliding slug can retry.
func uniqueSlug(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "-" + suffix
}
