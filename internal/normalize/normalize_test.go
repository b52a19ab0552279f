package normalize

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Radiohead  ", "radiohead"},
		{"The Beatles", "beatles"},
		{"Beatles, The", "beatles"},
		{"Cash, Johnny", "johnny cash"},
		{"Simon, and Garfunkel", "simon, & garfunkel"},
		{"Simon and Garfunkel", "simon & garfunkel"},
		{"Florence and the Machine", "florence & machine"},
		{"The The", "the"},
		{"Eminem (feat. Rihanna)", "eminem"},
		{"Eminem [ft Rihanna]", "eminem"},
		{"Santana feat. Rob Thomas", "santana"},
		{"Santana ft. Rob Thomas", "santana"},
		{"Crosby, Stills, Nash", "crosby, stills, nash"},
		{"Nick   Cave   ", "nick cave"},
		{"", ""},
		{",", ","},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKey_ArticleInversionMatches(t *testing.T) {
	if Key("Beatles, The") != Key("The Beatles") {
		t.Errorf("Key(%q) = %q, Key(%q) = %q", "Beatles, The", Key("Beatles, The"), "The Beatles", Key("The Beatles"))
	}
}

func TestKey_Idempotent(t *testing.T) {
	inputs := []string{
		"The Beatles",
		"Beatles, The",
		"Cash, Johnny",
		"a, b (feat. c, d)",
		"x the the y",
		"rock and and roll",
		"band (feat. x) the",
		"The (feat. X), Beatles",
		"Simon, and Garfunkel",
		"Artist, feat. Someone",
		"AC/DC",
		"  Sigur Rós  ",
		"The",
		"and",
		"feat. Nobody",
	}
	for _, in := range inputs {
		once := Key(in)
		twice := Key(once)
		if once != twice {
			t.Errorf("Key not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC", "ac dc"},
		{"AC-DC", "ac dc"},
		{"ACDC", "acdc"},
		{"The Beatles", "beatles"},
		{"Beatles, The", "beatles"},
		{"Guns N' Roses", "guns n roses"},
		{"Simon & Garfunkel", "simon garfunkel"},
		{"Sigur Rós", "sigur ros"},
		{"Earth, Wind + Fire", "earth wind fire"},
		{"Run—DMC", "run dmc"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompact_PunctuationVariants(t *testing.T) {
	want := Compact("ACDC")
	for _, in := range []string{"AC/DC", "AC-DC", "ac dc", "A.C.D.C."} {
		if got := Compact(in); got != want {
			t.Errorf("Compact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeyAndFoldDiffer(t *testing.T) {
	// The coarse key keeps punctuation; the folded form does not.
	if Key("AC/DC") == Key("AC-DC") {
		t.Error("expected coarse keys of AC/DC and AC-DC to differ")
	}
	if Fold("AC/DC") != Fold("AC-DC") {
		t.Error("expected folded forms of AC/DC and AC-DC to match")
	}
}
