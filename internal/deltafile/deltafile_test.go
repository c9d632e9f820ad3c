package deltafile

import (
	"reflect"
	"testing"

	"deltaflow/internal/block"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	blocks := []Block{
		{
			Class:      block.ClassAxis,
			Meta:       map[string]any{"class": "axis"},
			Partitions: [][]byte{[]byte("axis-payload")},
		},
		{
			Class:      block.ClassPut,
			Meta:       map[string]any{"class": "put", "count": float64(1)},
			Partitions: [][]byte{[]byte("put-payload")},
		},
		{
			Class:      block.ClassExtend,
			Meta:       map[string]any{"class": "extend"},
			Partitions: [][]byte{[]byte("extend-cols"), []byte("extend-rows")},
		},
	}

	data, err := Encode(blocks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("got %d blocks, want 3", len(decoded))
	}

	order := []block.Class{block.ClassAxis, block.ClassPut, block.ClassExtend}
	for i, want := range order {
		if decoded[i].Class != want {
			t.Fatalf("block %d class = %v, want %v", i, decoded[i].Class, want)
		}
	}

	if !reflect.DeepEqual(decoded[0].Partitions, [][]byte{[]byte("axis-payload")}) {
		t.Fatalf("axis partitions = %v", decoded[0].Partitions)
	}
	if !reflect.DeepEqual(decoded[2].Partitions, [][]byte{[]byte("extend-cols"), []byte("extend-rows")}) {
		t.Fatalf("extend partitions = %v", decoded[2].Partitions)
	}
}

func TestDecodeRejectsTruncatedFile(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated delta file")
	}
}

func TestDecodePreservesBlockNameOrder(t *testing.T) {
	// Intentionally not alphabetical: axis < extend < put alphabetically,
	// but the write order here is put, axis, extend.
	blocks := []Block{
		{Class: block.ClassPut, Meta: map[string]any{"class": "put"}, Partitions: [][]byte{[]byte("p")}},
		{Class: block.ClassAxis, Meta: map[string]any{"class": "axis"}, Partitions: [][]byte{[]byte("a")}},
		{Class: block.ClassExtend, Meta: map[string]any{"class": "extend"}, Partitions: [][]byte{[]byte("e")}},
	}
	data, err := Encode(blocks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []block.Class{block.ClassPut, block.ClassAxis, block.ClassExtend}
	for i, w := range want {
		if decoded[i].Class != w {
			t.Fatalf("position %d = %v, want %v (order not preserved)", i, decoded[i].Class, w)
		}
	}
}
