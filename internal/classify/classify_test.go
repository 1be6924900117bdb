package classify

import (
	"reflect"
	"testing"
)

func TestCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"ai keyword", "New AI model released", "Technology"},
		{"no keyword", "A quiet afternoon by the lake", "General"},
		{"substring is not a word", "She said it rained again", "General"},
		{"first category wins", "Tech stocks rally as market opens", "Technology"},
		{"business", "Central bank raises rates", "Business"},
		{"politics", "Parliament debates new bill", "Politics"},
		{"health", "Hospital expands vaccine program", "Health"},
		{"sports", "Football season kicks off", "Sports"},
		{"entertainment", "Hollywood awaits the film festival", "Entertainment"},
		{"plural business keyword", "Markets rally", "Business"},
		{"business outranks plural politics", "Markets rally as elections loom", "Business"},
		{"plural health keyword", "Hospitals strained by new variants", "Health"},
		{"plural technology keywords", "Startups raise record funding for robots", "Technology"},
		{"plural entertainment keyword", "New movies top the charts", "Entertainment"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Category(tc.text); got != tc.want {
				t.Fatalf("Category(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestTagsCollectsAllMatches(t *testing.T) {
	t.Parallel()

	got := Tags("BREAKING: exclusive analysis of international breaking-news coverage")
	want := []string{"breaking", "exclusive", "analysis", "international", "breaking-news"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tags = %v, want %v", got, want)
	}

	if tags := Tags("nothing to see here"); len(tags) != 0 {
		t.Fatalf("expected no tags, got %v", tags)
	}
}

func TestLocateCityWinsOverCountry(t *testing.T) {
	t.Parallel()

	loc := Locate("Summit in Paris draws leaders from across France")
	if loc.City != "Paris" {
		t.Fatalf("expected city Paris, got %q", loc.City)
	}
	if loc.Country != "" {
		t.Fatalf("country must be empty when a city matched, got %q", loc.Country)
	}
}

func TestLocateOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text    string
		city    string
		country string
	}{
		{"From London to New York", "New York", ""},
		{"Elections in Germany and Japan", "", "Germany"},
		{"Markets in the United States", "", "United States"},
		{"Protests across the uk", "", "UK"},
		{"no places mentioned", "", ""},
	}

	for _, tc := range cases {
		loc := Locate(tc.text)
		if loc.City != tc.city || loc.Country != tc.country {
			t.Fatalf("Locate(%q) = %+v, want city=%q country=%q", tc.text, loc, tc.city, tc.country)
		}
	}
}
