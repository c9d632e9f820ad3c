package node

import "testing"

func TestDeltaHeaderLineageOnOriginParent(t *testing.T) {
	h := NewDeltaHeader("origin-id", "origin-id", nil)
	if len(h.Lineage) != 1 || h.Lineage[0] != "origin-id" {
		t.Fatalf("Lineage = %v, want [origin-id]", h.Lineage)
	}
}

func TestDeltaHeaderLineagePrependsParent(t *testing.T) {
	h := NewDeltaHeader("origin-id", "delta-1", []string{"origin-id"})
	want := []string{"delta-1", "origin-id"}
	if len(h.Lineage) != len(want) {
		t.Fatalf("Lineage = %v, want %v", h.Lineage, want)
	}
	for i := range want {
		if h.Lineage[i] != want[i] {
			t.Fatalf("Lineage = %v, want %v", h.Lineage, want)
		}
	}
}

func TestCanonicalJSONFieldOrderIsStable(t *testing.T) {
	h := NewDeltaHeader("o", "p", []string{"o"})
	a, err := CanonicalJSON(h)
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	b, err := CanonicalJSON(h)
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("CanonicalJSON not stable: %s vs %s", a, b)
	}
	if string(a) != `{"type":"delta","origin":"o","lineage":["p","o"]}` {
		t.Fatalf("CanonicalJSON = %s", a)
	}
}

func TestHeaderHashDiffersByContent(t *testing.T) {
	h1, err := HeaderHash(NewOriginHeader("abc"))
	if err != nil {
		t.Fatalf("HeaderHash: %v", err)
	}
	h2, err := HeaderHash(NewOriginHeader("def"))
	if err != nil {
		t.Fatalf("HeaderHash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("expected different header hashes for different origin hashes")
	}
}

func TestPeekType(t *testing.T) {
	raw, _ := CanonicalJSON(NewOriginHeader("abc"))
	typ, err := PeekType(raw)
	if err != nil {
		t.Fatalf("PeekType: %v", err)
	}
	if typ != TypeOrigin {
		t.Fatalf("PeekType = %q, want %q", typ, TypeOrigin)
	}
}
