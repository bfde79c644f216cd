package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/theirongolddev/orgburn/internal/model"

	"gopkg.in/yaml.v3"
)

const (
	templatePrefix = "rate_limit_template_"
	templateExt    = ".yaml"
)

var (
	// ErrTemplateNotFound is returned when no template exists under a name.
	ErrTemplateNotFound = errors.New("store: rate limit template not found")
	// ErrTemplateName is returned for names that cannot form a file name.
	ErrTemplateName = errors.New("store: template names may only contain letters, digits, '-' and '_'")

	templateNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// TemplateStore keeps rate-limit templates as YAML files in one directory.
type TemplateStore struct {
	dir string
}

// NewTemplateStore returns a store rooted at dir.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir}
}

// Path returns the file that holds the named template.
func (s *TemplateStore) Path(name string) string {
	return filepath.Join(s.dir, templatePrefix+name+templateExt)
}

// Save writes a template, replacing any previous one of the same name.
func (s *TemplateStore) Save(t model.RateLimitTemplate) error {
	if !templateNameRe.MatchString(t.Name) {
		return ErrTemplateName
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding template %s: %w", t.Name, err)
	}
	if err := WriteFileAtomic(s.Path(t.Name), data); err != nil {
		return fmt.Errorf("saving template %s: %w", t.Name, err)
	}
	return nil
}

// Load reads the named template.
func (s *TemplateStore) Load(name string) (model.RateLimitTemplate, error) {
	if !templateNameRe.MatchString(name) {
		return model.RateLimitTemplate{}, ErrTemplateName
	}
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return model.RateLimitTemplate{}, fmt.Errorf("%s: %w", name, ErrTemplateNotFound)
	}
	if err != nil {
		return model.RateLimitTemplate{}, fmt.Errorf("reading template %s: %w", name, err)
	}

	var t model.RateLimitTemplate
	if err := yaml.Unmarshal(data, &t); err != nil {
		return model.RateLimitTemplate{}, fmt.Errorf("parsing template %s: %w", name, err)
	}
	if t.Name == "" {
		t.Name = name
	}
	return t, nil
}

// List returns the names of all stored templates, sorted.
func (s *TemplateStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, templatePrefix) || !strings.HasSuffix(n, templateExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(n, templatePrefix), templateExt))
	}
	sort.Strings(names)
	return names, nil
}
