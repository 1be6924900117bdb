// Package dedup collapses articles that share a textual fingerprint.
package dedup

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/textutil"
)

// prefixRunes is how much of the content contributes to the fingerprint.
const prefixRunes = 100

// namespace scopes stable ids so they never collide with other UUIDv5 users.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("newsingest/articles"))

// Fingerprint encodes the title plus the first 100 runes of content and keeps
// only ASCII letters and digits. It is an approximate identity, not a digest:
// articles whose openings differ slightly will not match.
func Fingerprint(article domain.Article) string {
	raw := article.Title + textutil.Truncate(article.Content, prefixRunes)
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))

	var b strings.Builder
	b.Grow(len(encoded))
	for _, r := range encoded {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StableID derives a deterministic record id from the article fingerprint.
func StableID(article domain.Article) string {
	return uuid.NewSHA1(namespace, []byte(Fingerprint(article))).String()
}

// Deduplicate keeps the first article for every fingerprint, preserving input
// order. The input slice is not modified.
func Deduplicate(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		fp := Fingerprint(article)
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		unique = append(unique, article)
	}
	return unique
}
