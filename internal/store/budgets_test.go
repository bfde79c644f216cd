package store

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestBudgetFile_MissingIsEmpty(t *testing.T) {
	b := NewBudgetFile(filepath.Join(t.TempDir(), "budgets.json"))
	budgets, err := b.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(budgets) != 0 {
		t.Errorf("len(budgets) = %d, want 0", len(budgets))
	}
}

func TestBudgetFile_SetRemoveReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "budgets.json")
	b := NewBudgetFile(path)

	if err := b.Set("p1", 100); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := b.Set("p2", 25.5); err != nil {
		t.Fatalf("Set: %v", err)
	}

	budgets, err := b.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if budgets["p1"] != 100 || budgets["p2"] != 25.5 {
		t.Errorf("budgets = %v, want p1=100 p2=25.5", budgets)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	removed, err := b.Remove("p1")
	if err != nil || !removed {
		t.Errorf("Remove(p1) = %v, %v; want true, nil", removed, err)
	}
	removed, err = b.Remove("p1")
	if err != nil || removed {
		t.Errorf("Remove(p1) again = %v, %v; want false, nil", removed, err)
	}

	if err := b.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Reset: %v", err)
	}
	if err := b.Reset(); err != nil {
		t.Errorf("Reset of missing file = %v, want nil", err)
	}
}

func TestBudgetFile_RejectsInvalidAmounts(t *testing.T) {
	b := NewBudgetFile(filepath.Join(t.TempDir(), "budgets.json"))
	for _, v := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := b.Set("p1", v); !errors.Is(err, ErrInvalidBudget) {
			t.Errorf("Set(%v) = %v, want ErrInvalidBudget", v, err)
		}
	}
	if err := b.Set("p1", 0); err != nil {
		t.Errorf("Set(0) = %v, want nil", err)
	}
}

func TestBudgetFile_LenientLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.json")
	if err := os.WriteFile(path, []byte(`{"p1": 10, "p2": "oops", "p3": 2.5, "p4": -5}`), 0o600); err != nil {
		t.Fatal(err)
	}
	budgets, err := NewBudgetFile(path).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(budgets) != 2 || budgets["p1"] != 10 || budgets["p3"] != 2.5 {
		t.Errorf("budgets = %v, want p1=10 p3=2.5 (negative p4 dropped)", budgets)
	}
}

func TestBudgetFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.json")
	if err := os.WriteFile(path, []byte(`[1,2`), 0o600); err != nil {
		t.Fatal(err)
	}
	budgets, err := NewBudgetFile(path).Load()
	if err == nil {
		t.Error("expected error for corrupt file")
	}
	if budgets == nil || len(budgets) != 0 {
		t.Errorf("budgets = %v, want empty map", budgets)
	}
}

func TestBudgetFile_ConcurrentSet(t *testing.T) {
	b := NewBudgetFile(filepath.Join(t.TempDir(), "budgets.json"))
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(id string, amount float64) {
			defer wg.Done()
			if err := b.Set(id, amount); err != nil {
				t.Errorf("Set(%s): %v", id, err)
			}
		}(id, float64(i))
	}
	wg.Wait()

	budgets, err := b.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != len(ids) {
		t.Errorf("len(budgets) = %d, want %d (no lost updates)", len(budgets), len(ids))
	}
}
