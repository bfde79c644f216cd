package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sync"

	"github.com/tidwall/gjson"
)

// DefaultBudgetFile is the budget file name used when none is configured.
const DefaultBudgetFile = "project_budgets.json"

// ErrInvalidBudget is returned for negative or non-finite budget amounts.
var ErrInvalidBudget = errors.New("store: budget must be a finite, non-negative amount")

// BudgetFile is a flat JSON object mapping project ids to budget amounts.
// Mutations are serialized and each write atomically replaces the file.
type BudgetFile struct {
	path string
	mu   sync.Mutex
}

// NewBudgetFile returns a BudgetFile backed by path.
func NewBudgetFile(path string) *BudgetFile {
	if path == "" {
		path = DefaultBudgetFile
	}
	return &BudgetFile{path: path}
}

// Path returns the file location.
func (b *BudgetFile) Path() string {
	return b.path
}

// Load reads all budgets. A missing file is an empty mapping. Entries whose
// value is not a non-negative number are dropped.
func (b *BudgetFile) Load() (map[string]float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load()
}

func (b *BudgetFile) load() (map[string]float64, error) {
	budgets := make(map[string]float64)

	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return budgets, nil
	}
	if err != nil {
		return budgets, fmt.Errorf("reading budgets: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return budgets, fmt.Errorf("reading budgets: %s is not valid JSON", b.path)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return budgets, fmt.Errorf("reading budgets: %s is not a JSON object", b.path)
	}
	root.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.Number && validAmount(v.Float()) {
			budgets[k.String()] = v.Float()
		}
		return true
	})
	return budgets, nil
}

// Save replaces the file with the given budgets.
func (b *BudgetFile) Save(budgets map[string]float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.save(budgets)
}

func (b *BudgetFile) save(budgets map[string]float64) error {
	for id, amount := range budgets {
		if !validAmount(amount) {
			return fmt.Errorf("saving budget %s: %w", id, ErrInvalidBudget)
		}
	}
	data, err := json.MarshalIndent(budgets, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding budgets: %w", err)
	}
	if err := WriteFileAtomic(b.path, append(data, '\n')); err != nil {
		return fmt.Errorf("saving budgets: %w", err)
	}
	return nil
}

// Set assigns a budget to one project.
func (b *BudgetFile) Set(projectID string, amount float64) error {
	if !validAmount(amount) {
		return ErrInvalidBudget
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	budgets, err := b.load()
	if err != nil {
		return err
	}
	budgets[projectID] = amount
	return b.save(budgets)
}

// Remove deletes one project's budget. It reports whether the project had one.
func (b *BudgetFile) Remove(projectID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	budgets, err := b.load()
	if err != nil {
		return false, err
	}
	if _, ok := budgets[projectID]; !ok {
		return false, nil
	}
	delete(budgets, projectID)
	return true, b.save(budgets)
}

// Reset deletes the budget file. Resetting when no file exists succeeds.
func (b *BudgetFile) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("resetting budgets: %w", err)
	}
	return nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
