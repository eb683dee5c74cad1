package suggest

import (
	"reflect"
	"testing"

	"scholar/internal/domain"
)

func TestAutocomplete(t *testing.T) {
	trie := NewTrie()
	trie.Insert("machine", 10)
	trie.Insert("machinery", 2)

	got := trie.Autocomplete("mach", 2)
	want := []string{"machine", "machinery"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("autocomplete(mach) = %v, want %v", got, want)
	}

	if got := trie.Autocomplete("m", 5); len(got) != 0 {
		t.Errorf("short prefix returned %v", got)
	}
	if got := trie.Autocomplete("zzz", 5); len(got) != 0 {
		t.Errorf("unmatched prefix returned %v", got)
	}
}

func TestAutocompleteOrdering(t *testing.T) {
	trie := NewTrie()
	trie.Insert("neural", 5)
	trie.Insert("network", 9)
	trie.Insert("networks", 9)
	trie.Insert("neuron", 1)

	got := trie.Autocomplete("ne", 10)
	// Popularity descending, ties alphabetical.
	want := []string{"network", "networks", "neural", "neuron"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if got := trie.Autocomplete("ne", 2); !reflect.DeepEqual(got, []string{"network", "networks"}) {
		t.Fatalf("limit not applied: %v", got)
	}
}

func TestInsertRejections(t *testing.T) {
	trie := NewTrie()
	cases := []string{"ab", "c3po", "state-of-art", ""}
	for _, term := range cases {
		if trie.Insert(term, 1) {
			t.Errorf("Insert(%q) accepted", term)
		}
	}
	if trie.Size() != 0 {
		t.Fatalf("size = %d after rejected inserts", trie.Size())
	}

	if !trie.Insert("Valid", 1) {
		t.Error("mixed-case alphabetic term rejected")
	}
	if got := trie.Autocomplete("va", 1); len(got) != 1 || got[0] != "valid" {
		t.Errorf("case not folded: %v", got)
	}
}

func TestInsertKeepsHigherWeight(t *testing.T) {
	trie := NewTrie()
	trie.Insert("graph", 3)
	trie.Insert("graphs", 5)
	trie.Insert("graph", 1) // lower weight must not demote

	got := trie.Autocomplete("gra", 2)
	if !reflect.DeepEqual(got, []string{"graphs", "graph"}) {
		t.Fatalf("got %v", got)
	}
	if trie.Size() != 2 {
		t.Errorf("size = %d, want 2", trie.Size())
	}
}

func TestCollectionCap(t *testing.T) {
	trie := NewTrie()
	terms := []string{"aaa", "aab", "aac", "aad", "aae", "aaf"}
	for i, term := range terms {
		trie.Insert(term, len(terms)-i)
	}

	// limit 2 collects at most 4 candidates; results stay within limit and
	// come from the collected prefix-ordered window.
	got := trie.Autocomplete("aa", 2)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0] != "aaa" || got[1] != "aab" {
		t.Fatalf("got %v, want highest-weight pair", got)
	}
}

func TestBuildPopularity(t *testing.T) {
	long := make([]byte, 0, 300)
	for i := 0; i < 30; i++ {
		long = append(long, []byte("padpadpad ")...)
	}
	docs := []domain.Document{
		{ID: "1", Title: "Machine learning, machine vision", Abstract: "Neural nets."},
		{ID: "2", Title: "Graph theory", Abstract: string(long) + " tailword"},
	}

	pop := BuildPopularity(docs)
	if pop["machine"] != 2 {
		t.Errorf("machine count = %d, want 2", pop["machine"])
	}
	if pop["learning"] != 1 {
		t.Errorf("learning count = %d, want 1", pop["learning"])
	}
	// Punctuation is trimmed before counting.
	if pop["machine,"] != 0 {
		t.Error("punctuation leaked into the table")
	}
	// Words beyond the abstract scan window are not counted.
	if pop["tailword"] != 0 {
		t.Error("abstract truncation not applied")
	}
	// Short words are excluded.
	if _, ok := pop["of"]; ok {
		t.Error("short word counted")
	}
}
