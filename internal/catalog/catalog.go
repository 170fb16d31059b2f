// Package catalog resolves exercise names from imports to templates: a
// stable dbId, a scoring type and the muscle groups the exercise trains.
package catalog

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lifehub/lifehub/internal/models"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Catalog indexes templates by dbId and by case-insensitive name.
// Later additions replace earlier ones with the same dbId or name.
type Catalog struct {
	byID   map[string]models.Template
	byName map[string]string // normalized name -> dbId
}

// file is the YAML layout read by LoadFile.
type file struct {
	Exercises []models.Template `yaml:"exercises"`
}

// New builds a catalog from templates. Templates without a dbId get the
// slug of their name.
func New(templates ...models.Template) *Catalog {
	c := &Catalog{
		byID:   make(map[string]models.Template),
		byName: make(map[string]string),
	}
	c.Add(templates...)
	return c
}

// LoadFile reads a YAML catalog of the form:
//
//	exercises:
//	  - name: Bench Press
//	    dbId: bench_press
//	    type: Weight & Reps
//	    target: [Chest, Triceps]
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	for i, t := range f.Exercises {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i+1)
		}
	}
	return New(f.Exercises...), nil
}

// Add indexes templates, replacing entries that share a dbId or name.
func (c *Catalog) Add(templates ...models.Template) {
	for _, t := range templates {
		if t.DBID == "" {
			t.DBID = Slug(t.Name)
		}
		if t.Type == "" {
			t.Type = models.ScoreWeightReps
		}
		t.Target = slices.Clone(t.Target)
		if old, ok := c.byID[t.DBID]; ok {
			delete(c.byName, normalize(old.Name))
		}
		c.byID[t.DBID] = t
		c.byName[normalize(t.Name)] = t.DBID
	}
}

// Lookup resolves an exercise name. Unknown names yield a template with
// the slug of the name as dbId, "Weight & Reps" scoring and no targets,
// with ok false.
func (c *Catalog) Lookup(name string) (t models.Template, ok bool) {
	if id, found := c.byName[normalize(name)]; found {
		return c.copyOf(id), true
	}
	return models.Template{
		DBID: Slug(name),
		Name: strings.TrimSpace(name),
		Type: models.ScoreWeightReps,
	}, false
}

// ByID returns the template with the given dbId.
func (c *Catalog) ByID(id string) (models.Template, bool) {
	if _, ok := c.byID[id]; !ok {
		return models.Template{}, false
	}
	return c.copyOf(id), true
}

// Templates returns every template sorted by dbId.
func (c *Catalog) Templates() []models.Template {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]models.Template, len(ids))
	for i, id := range ids {
		out[i] = c.copyOf(id)
	}
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.byID)
}

func (c *Catalog) copyOf(id string) models.Template {
	t := c.byID[id]
	t.Target = slices.Clone(t.Target)
	return t
}

// Slug turns an exercise name into a dbId: lowercase ASCII letters and
// digits joined by underscores. "Bench Press (Barbell)" -> "bench_press_barbell".
func Slug(name string) string {
	s := nonSlugRe.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(s, "_")
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
