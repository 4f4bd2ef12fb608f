package verkle

import "testing"

func TestSplitLeafValueAbsentIsZero(t *testing.T) {
	low, high := splitLeafValue(nil, false)
	var zero Fr
	if !low.Equal(&zero) || !high.Equal(&zero) {
		t.Fatalf("absent leaf value must contribute an all-zero pair")
	}
}

func TestSplitLeafValuePresentSetsFlag(t *testing.T) {
	value := make([]byte, 32)
	for i := range value {
		value[i] = byte(i + 1)
	}
	low, high := splitLeafValue(value, true)

	var zero Fr
	if low.Equal(&zero) {
		t.Fatalf("present leaf value produced a zero low scalar")
	}
	if high.Equal(&zero) {
		t.Fatalf("present leaf value produced a zero high scalar")
	}
}

func TestSplitLeafValueShortValue(t *testing.T) {
	value := []byte{0xaa, 0xbb}
	low, high := splitLeafValue(value, true)

	var zero Fr
	if low.Equal(&zero) {
		t.Fatalf("short present value should still set the presence flag in low")
	}
	if !high.Equal(&zero) {
		t.Fatalf("a value shorter than 16 bytes should leave high all-zero")
	}
}

func TestSplitLeafValueDeterministic(t *testing.T) {
	value := []byte{1, 2, 3, 4, 5}
	l1, h1 := splitLeafValue(value, true)
	l2, h2 := splitLeafValue(value, true)
	if !l1.Equal(&l2) || !h1.Equal(&h2) {
		t.Fatalf("splitLeafValue is not deterministic")
	}
}
