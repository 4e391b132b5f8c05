package idempotency

import (
	"testing"
	"time"
)

func TestGenerateKeyOrderIndependent(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 30, 45, 0, time.UTC)

	a := GenerateKey([]string{"discharge.pdf", "lab.pdf"}, "claim", ts)
	b := GenerateKey([]string{"lab.pdf", "discharge.pdf"}, "claim", ts)
	if a != b {
		t.Errorf("key depends on file order: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestGenerateKeyMinuteWindow(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 30, 5, 0, time.UTC)
	files := []string{"discharge.pdf"}

	sameWindow := GenerateKey(files, "claim", base.Add(40*time.Second))
	if GenerateKey(files, "claim", base) != sameWindow {
		t.Error("keys within the same minute differ")
	}

	nextWindow := GenerateKey(files, "claim", base.Add(2*time.Minute))
	if GenerateKey(files, "claim", base) == nextWindow {
		t.Error("keys across minutes collide")
	}
}

func TestGenerateKeyUseCaseDistinct(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	files := []string{"discharge.pdf"}

	if GenerateKey(files, "claim", ts) == GenerateKey(files, "preauthorization", ts) {
		t.Error("claim and preauthorization keys collide")
	}
}

func TestGenerateContentKey(t *testing.T) {
	a := GenerateContentKey([]string{"text one", "text two"}, "claim")
	b := GenerateContentKey([]string{"text two", "text one"}, "claim")
	if a != b {
		t.Errorf("content key depends on order: %s vs %s", a, b)
	}
	if a == GenerateContentKey([]string{"text one"}, "claim") {
		t.Error("different content sets collide")
	}
}
