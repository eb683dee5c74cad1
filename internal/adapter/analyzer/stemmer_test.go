package analyzer

import "testing"

func TestStemBasics(t *testing.T) {
	stemmer := NewPorterStemmer()

	cases := []struct {
		in   string
		want string
	}{
		{"caresses", "caress"},
		{"ponies", "poni"},
		{"caress", "caress"},
		{"cats", "cat"},
		{"agreed", "agre"},
		{"plastered", "plaster"},
		{"motoring", "motor"},
		{"happy", "happi"},
		{"relational", "relat"},
		{"conditional", "condit"},
		{"vietnamization", "vietnam"},
		{"triplicate", "triplic"},
		{"hopefulness", "hope"},
		{"formalize", "formal"},
		{"revival", "reviv"},
		{"adjustable", "adjust"},
		{"adoption", "adopt"},
		{"probate", "probat"},
		{"cease", "ceas"},
		{"controll", "control"},
		{"learning", "learn"},
		{"machine", "machin"},
	}

	for _, tc := range cases {
		if got := stemmer.Stem(tc.in); got != tc.want {
			t.Errorf("Stem(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStemShortWordsUnchanged(t *testing.T) {
	stemmer := NewPorterStemmer()
	for _, w := range []string{"a", "be", "is"} {
		if got := stemmer.Stem(w); got != w {
			t.Errorf("Stem(%q) = %q, want unchanged", w, got)
		}
	}
}

func TestStemDeterministic(t *testing.T) {
	stemmer := NewPorterStemmer()
	words := []string{"organization", "nationality", "sensitiviti", "generalization"}
	for _, w := range words {
		first := stemmer.Stem(w)
		for i := 0; i < 50; i++ {
			if got := stemmer.Stem(w); got != first {
				t.Fatalf("Stem(%q) unstable: %q vs %q", w, first, got)
			}
		}
	}
}

func TestStemIndexQueryAgreement(t *testing.T) {
	stemmer := NewPorterStemmer()

	pairs := [][2]string{
		{"learning", "learned"},
		{"computation", "computational"},
		{"networks", "network"},
	}
	for _, p := range pairs {
		if stemmer.Stem(p[0]) != stemmer.Stem(p[1]) {
			t.Errorf("expected %q and %q to share a stem, got %q vs %q",
				p[0], p[1], stemmer.Stem(p[0]), stemmer.Stem(p[1]))
		}
	}
}
