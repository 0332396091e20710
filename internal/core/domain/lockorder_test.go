package domain

import (
	"math/rand"
	"testing"
)

func TestCanonicalOrder_SortsAscending(t *testing.T) {
	items := []LineItem{
		{ProductID: 42, Quantity: 1},
		{ProductID: 7, Quantity: 2},
		{ProductID: 19, Quantity: 3},
	}

	out := CanonicalOrder(items)

	if len(out) != 3 {
		t.Fatalf("expected 3 items, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].ProductID >= out[i].ProductID {
			t.Errorf("items not in ascending id order: %v", out)
		}
	}
}

func TestCanonicalOrder_MergesDuplicates(t *testing.T) {
	items := []LineItem{
		{ProductID: 5, Quantity: 1},
		{ProductID: 3, Quantity: 2},
		{ProductID: 5, Quantity: 4},
	}

	out := CanonicalOrder(items)

	if len(out) != 2 {
		t.Fatalf("expected duplicates merged into 2 items, got %d", len(out))
	}
	if out[0].ProductID != 3 || out[0].Quantity != 2 {
		t.Errorf("unexpected first item: %+v", out[0])
	}
	if out[1].ProductID != 5 || out[1].Quantity != 5 {
		t.Errorf("expected merged quantity 5 for product 5, got %+v", out[1])
	}
}

func TestCanonicalOrder_Empty(t *testing.T) {
	if out := CanonicalOrder(nil); len(out) != 0 {
		t.Errorf("expected empty result, got %v", out)
	}
}

func TestCanonicalOrder_AgreesAcrossPermutations(t *testing.T) {
	base := []LineItem{
		{ProductID: 9, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 31, Quantity: 1},
		{ProductID: 14, Quantity: 1},
	}

	want := CanonicalOrder(base)
	rng := rand.New(rand.NewSource(1))

	// Two concurrent checkouts must agree on lock order no matter how the
	// request arranged its items.
	for i := 0; i < 20; i++ {
		shuffled := make([]LineItem, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := CanonicalOrder(shuffled)
		if len(got) != len(want) {
			t.Fatalf("length mismatch: %v vs %v", got, want)
		}
		for j := range got {
			if got[j] != want[j] {
				t.Fatalf("order differs for permutation %d: %v vs %v", i, got, want)
			}
		}
	}
}
