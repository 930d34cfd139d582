package postgres

import "testing"

func TestEmbed_IsDeterministicAndNormalised(t *testing.T) {
	t.Parallel()

	v1 := Embed("A dimly lit cellar. There is a trap door here.")
	v2 := Embed("A dimly lit cellar. There is a trap door here.")

	if len(v1) != Dimensions {
		t.Fatalf("len(v1) = %d, want %d", len(v1), Dimensions)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("Embed is not deterministic at index %d: %v vs %v", i, v1[i], v2[i])
		}
	}

	var sumSq float64
	for _, x := range v1 {
		sumSq += float64(x) * float64(x)
	}
	if sumSq < 0.99 || sumSq > 1.01 {
		t.Errorf("embedding is not unit-normalised: sum of squares = %v", sumSq)
	}
}

func TestEmbed_SimilarTextsAreCloserThanDissimilar(t *testing.T) {
	t.Parallel()

	a := Embed("A dimly lit cellar with a trap door.")
	b := Embed("A dimly-lit cellar, with a trap door!")
	c := Embed("You are standing on top of a great mountain peak.")

	simAB := cosine(a, b)
	simAC := cosine(a, c)

	if simAB <= simAC {
		t.Errorf("expected near-duplicate descriptions to score higher: sim(a,b)=%v, sim(a,c)=%v", simAB, simAC)
	}
}

func TestEmbed_HandlesShortText(t *testing.T) {
	t.Parallel()

	v := Embed("Hi")
	if len(v) != Dimensions {
		t.Fatalf("len(v) = %d, want %d", len(v), Dimensions)
	}
}

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
