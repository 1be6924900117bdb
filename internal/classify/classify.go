// Package classify derives category, tags and location from article text
// using fixed keyword lists. Precedence is fixed so results are reproducible:
// categories and locations are first-match-wins in list order, tags collect
// every match.
package classify

import (
	"regexp"
	"strings"
)

// DefaultCategory is assigned when no category keyword matches.
const DefaultCategory = "General"

type category struct {
	name     string
	keywords []string
}

var categories = []category{
	{"Technology", []string{"technology", "tech", "ai", "artificial intelligence", "software", "computer", "digital", "internet", "cyber", "startup", "smartphone", "robot"}},
	{"Business", []string{"business", "economy", "market", "stock", "finance", "company", "trade", "bank", "investment", "earnings"}},
	{"Politics", []string{"politics", "election", "government", "president", "congress", "parliament", "minister", "policy", "senate", "vote"}},
	{"Health", []string{"health", "medical", "hospital", "disease", "covid", "vaccine", "doctor", "virus", "medicine"}},
	{"Sports", []string{"sport", "sports", "football", "soccer", "basketball", "tennis", "olympics", "cricket", "championship"}},
	{"Entertainment", []string{"entertainment", "movie", "film", "music", "celebrity", "television", "hollywood", "concert", "actor"}},
}

var tagVocabulary = []string{
	"breaking", "urgent", "exclusive", "analysis", "opinion", "investigation",
	"local", "national", "international", "breaking-news", "trending",
}

type place struct {
	key  string
	name string
}

var cities = []place{
	{"new york", "New York"},
	{"london", "London"},
	{"paris", "Paris"},
	{"tokyo", "Tokyo"},
	{"berlin", "Berlin"},
	{"moscow", "Moscow"},
	{"beijing", "Beijing"},
	{"delhi", "Delhi"},
	{"mumbai", "Mumbai"},
	{"sydney", "Sydney"},
}

var countries = []place{
	{"usa", "USA"},
	{"united states", "United States"},
	{"uk", "UK"},
	{"united kingdom", "United Kingdom"},
	{"france", "France"},
	{"germany", "Germany"},
	{"japan", "Japan"},
	{"china", "China"},
	{"india", "India"},
	{"australia", "Australia"},
}

var (
	categoryMatchers = compileCategories()
	tagMatchers      = compileWords(tagVocabulary)
)

// Location is the result of a single location scan. At most one field is set.
type Location struct {
	City    string
	Country string
}

// Category returns the first category whose keywords occur in text, checked
// in the fixed order Technology, Business, Politics, Health, Sports,
// Entertainment. Text without any keyword is DefaultCategory.
func Category(text string) string {
	lower := strings.ToLower(text)
	for i, c := range categories {
		for _, re := range categoryMatchers[i] {
			if re.MatchString(lower) {
				return c.name
			}
		}
	}
	return DefaultCategory
}

// Tags returns every vocabulary tag found in text, in vocabulary order.
func Tags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for i, re := range tagMatchers {
		if re.MatchString(lower) {
			tags = append(tags, tagVocabulary[i])
		}
	}
	return tags
}

// Locate scans text for the first listed city, then the first listed country.
// A city match ends the scan, so Country is never set alongside City.
// Names are returned title-cased per word ("New York"), acronyms upper-case ("USA").
func Locate(text string) Location {
	lower := strings.ToLower(text)
	for _, c := range cities {
		if strings.Contains(lower, c.key) {
			return Location{City: c.name}
		}
	}
	for _, c := range countries {
		if strings.Contains(lower, c.key) {
			return Location{Country: c.name}
		}
	}
	return Location{}
}

func compileCategories() [][]*regexp.Regexp {
	out := make([][]*regexp.Regexp, len(categories))
	for i, c := range categories {
		out[i] = compileWords(c.keywords)
	}
	return out
}

// compileWords anchors each keyword at the start of a word only, so plurals
// and inflections match while "said" does not match "ai".
func compileWords(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w))
	}
	return out
}
