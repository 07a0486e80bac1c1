package textfilter

import "testing"

func TestItemFilter_SubstringMatch(t *testing.T) {
	f := NewItemFilter()

	tests := []struct {
		name    string
		text    string
		want    string
		matched bool
	}{
		{"plain mention", "I left my sword at the inn", "sword", true},
		{"case insensitive", "That BREASTPLATE gleams", "breastplate", true},
		{"embedded substring", "swordsmanship takes years", "sword", true},
		{"clean line", "The air grows cold down here", "", false},
		{"multi word", "a suit of plate armor", "plate armor", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.FindMatch(tt.text)
			if ok != tt.matched {
				t.Fatalf("FindMatch(%q) matched=%v, want %v", tt.text, ok, tt.matched)
			}
			if got != tt.want {
				t.Errorf("FindMatch(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSlangFilter_WholeWordsOnly(t *testing.T) {
	f := NewSlangFilter()

	if _, ok := f.FindMatch("That was totally unnecessary"); !ok {
		t.Error("expected 'totally' to match")
	}
	if word, ok := f.FindMatch("Yeah, I suppose"); !ok || word != "yeah" {
		t.Errorf("expected 'yeah', got %q matched=%v", word, ok)
	}
	// "brook" contains "bro" but is not a whole-word match.
	if word, ok := f.FindMatch("The brook runs cold"); ok {
		t.Errorf("expected no match in 'brook', got %q", word)
	}
	if _, ok := f.FindMatch("The darkness presses close"); ok {
		t.Error("expected clean line to pass")
	}
}

func TestProfanityFilter_FilterText(t *testing.T) {
	pf := NewProfanityFilter()

	tests := []struct {
		in   string
		want string
	}{
		{"What the hell was that", "What the heck was that"},
		{"DAMN this place", "DANG this place"},
		{"Damn it all", "Dang it all"},
		{"A hellish sight", "A hellish sight"}, // word boundary
	}

	for _, tt := range tests {
		if got := pf.FilterText(tt.in); got != tt.want {
			t.Errorf("FilterText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProfanityFilter_ContainsProfanity(t *testing.T) {
	pf := NewProfanityFilter()

	if !pf.ContainsProfanity("damn right") {
		t.Error("expected profanity to be detected")
	}
	if pf.ContainsProfanity("a perfectly polite sentence") {
		t.Error("expected clean text to pass")
	}
}
