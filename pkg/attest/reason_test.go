package attest

import "testing"

func TestLookupReason_PreferenceOrder(t *testing.T) {
	// "fr" has no entry, "de" does: preference order is strict, so the
	// first candidate matching any table entry wins.
	text, lang := LookupReason("fr, de")
	if lang != "de" {
		t.Errorf("lang = %q, want \"de\"", lang)
	}
	wantText, _ := LookupReason("de")
	if text != wantText {
		t.Errorf("text = %q, want the de entry", text)
	}
}

func TestLookupReason_NoMatchFallsBackToDefault(t *testing.T) {
	text, lang := LookupReason("fr")
	if lang != "en" {
		t.Errorf("lang = %q, want default \"en\"", lang)
	}
	if text == "" {
		t.Error("default text is empty")
	}
}

func TestLookupReason_EmptyInputYieldsDefault(t *testing.T) {
	text, lang := LookupReason("")
	if lang != "en" || text == "" {
		t.Errorf("LookupReason(\"\") = (%q, %q), want default entry", text, lang)
	}
}

func TestLookupReason_WhitespaceHandling(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"padded tags", "  fr ,  de  ", "de"},
		{"tabs", "\tfr\t,\tmn\t", "mn"},
		{"whitespace-only token skipped", "  , de", "de"},
		{"trailing comma", "de,", "de"},
		{"empty tokens between commas", "fr,,de", "de"},
		{"only commas", ",,,", "en"},
		{"only whitespace", "   ", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lang := LookupReason(tt.input)
			if lang != tt.want {
				t.Errorf("LookupReason(%q) lang = %q, want %q", tt.input, lang, tt.want)
			}
		})
	}
}

func TestLookupReason_CaseSensitive(t *testing.T) {
	// Tags are stored lowercase; an uppercase preference is a non-match.
	_, lang := LookupReason("DE")
	if lang != "en" {
		t.Errorf("lang = %q, want default \"en\" for non-matching case", lang)
	}
}

func TestLookupReason_FirstPreferenceWins(t *testing.T) {
	// Both registered: the caller's first choice wins, not table order.
	_, lang := LookupReason("mn, en")
	if lang != "mn" {
		t.Errorf("lang = %q, want \"mn\"", lang)
	}
}

func TestReasonLanguages_DefaultFirst(t *testing.T) {
	langs := ReasonLanguages()
	if len(langs) == 0 {
		t.Fatal("no reason languages registered")
	}
	if langs[0] != "en" {
		t.Errorf("default language = %q, want \"en\"", langs[0])
	}
}

func TestState_ReasonString(t *testing.T) {
	s := New(1)
	defer s.Destroy()

	text, lang := s.ReasonString("de")
	if lang != "de" || text == "" {
		t.Errorf("ReasonString(\"de\") = (%q, %q)", text, lang)
	}
}
