package words

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/hello97-gg/hallotype/internal/model"
)

func TestGenerateCountAndMembership(t *testing.T) {
	gen := NewWithSource(rand.NewSource(1))
	for _, tier := range []model.Tier{model.TierEasy, model.TierMedium, model.TierHard} {
		t.Run(string(tier), func(t *testing.T) {
			got := gen.Generate(50, tier)
			if len(got) != 50 {
				t.Fatalf("expected 50 words, got %d", len(got))
			}
			list := ListForTier(tier)
			members := make(map[string]struct{}, len(list))
			for _, w := range list {
				members[w] = struct{}{}
			}
			for _, w := range got {
				if _, ok := members[w]; !ok {
					t.Fatalf("word %q not in %s list", w, tier)
				}
			}
		})
	}
}

func TestGenerateDeterministicWithSource(t *testing.T) {
	a := NewWithSource(rand.NewSource(42)).Generate(20, model.TierMedium)
	b := NewWithSource(rand.NewSource(42)).Generate(20, model.TierMedium)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestListForTierFallback(t *testing.T) {
	if got := ListForTier(model.Tier("bogus")); len(got) != len(mediumWords) {
		t.Fatalf("unknown tier should fall back to medium list")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.txt")
	if err := os.WriteFile(path, []byte("pumpkin\n\nghost\nbat\n"), 0o644); err != nil {
		t.Fatalf("write word list: %v", err)
	}
	list, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load word list: %v", err)
	}
	if len(list) != 3 || list[0] != "pumpkin" || list[2] != "bat" {
		t.Fatalf("unexpected list: %v", list)
	}
}

func TestLoadFileRejectsSpacesAndEmpty(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "spaced.txt")
	if err := os.WriteFile(path, []byte("two words\n"), 0o644); err != nil {
		t.Fatalf("write word list: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for embedded space")
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write word list: %v", err)
	}
	if _, err := LoadFile(empty); err == nil {
		t.Fatalf("expected error for empty list")
	}
}
