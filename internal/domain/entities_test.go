package domain

import (
	"encoding/json"
	"testing"
)

func TestPostingInvariant(t *testing.T) {
	var p Posting
	p.Add(0, FieldTitle)
	p.Add(3, FieldTitle)
	p.Add(7, FieldAbstract)

	if err := p.Validate(); err != nil {
		t.Fatalf("valid posting rejected: %v", err)
	}
	if p.TotalFreq != 3 || p.Title != 2 || p.Abstract != 1 {
		t.Fatalf("counts wrong: %+v", p)
	}

	bad := Posting{TotalFreq: 2, Positions: []int{1}, Title: 2}
	if err := bad.Validate(); err == nil {
		t.Error("invariant violation not detected")
	}

	unordered := Posting{TotalFreq: 2, Positions: []int{5, 3}, Title: 2}
	if err := unordered.Validate(); err == nil {
		t.Error("non-increasing positions not detected")
	}
}

func TestPostingJSONArrayForm(t *testing.T) {
	p := Posting{TotalFreq: 2, Positions: []int{1, 4}, Title: 1, Abstract: 1}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `[2,[1,4],1,0,0,1]`
	if string(data) != want {
		t.Fatalf("marshal = %s, want %s", data, want)
	}

	var back Posting
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(&p) {
		t.Fatalf("roundtrip changed posting: %+v vs %+v", back, p)
	}

	if err := json.Unmarshal([]byte(`[1,[0]]`), &back); err == nil {
		t.Error("truncated posting accepted")
	}
	if err := json.Unmarshal([]byte(`{"freq":1}`), &back); err == nil {
		t.Error("object-shaped posting accepted")
	}
}
