package store

import "testing"

func TestLexiconIntern(t *testing.T) {
	lex := NewLexicon()

	a := lex.Intern("alpha")
	b := lex.Intern("beta")
	if a != 1 || b != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", a, b)
	}
	if again := lex.Intern("alpha"); again != a {
		t.Fatalf("re-intern changed id: %d vs %d", again, a)
	}
	if lex.Len() != 2 {
		t.Fatalf("len = %d", lex.Len())
	}

	term, ok := lex.TermOf(2)
	if !ok || term != "beta" {
		t.Fatalf("TermOf(2) = %q, %v", term, ok)
	}
	if _, ok := lex.ID("gamma"); ok {
		t.Error("unknown term resolved")
	}
}

func TestLexiconResumesAfterMax(t *testing.T) {
	lex := lexiconFromMap(map[string]int{"alpha": 3, "beta": 7})
	if id := lex.Intern("gamma"); id != 8 {
		t.Fatalf("next id = %d, want 8", id)
	}
	// IDs are never reused, even for gaps.
	if id := lex.Intern("delta"); id != 9 {
		t.Fatalf("next id = %d, want 9", id)
	}
}
