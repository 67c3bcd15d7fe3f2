// Package catalog holds the static list of portfolio projects and the view-model that
// reconciles it with the media rows fetched from the gateway.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

var ErrEmptyCatalog = errors.New("catalog has no projects")

// Catalog is an ordered, slug-unique list of projects. It is immutable once built.
type Catalog struct {
	projects []domain.Project
	bySlug   map[string]int
}

// New validates projects and returns a catalog preserving their order.
func New(projects []domain.Project) (*Catalog, error) {
	if len(projects) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		projects: make([]domain.Project, len(projects)),
		bySlug:   make(map[string]int, len(projects)),
	}
	copy(c.projects, projects)
	for i, p := range c.projects {
		if p.Slug == "" {
			return nil, fmt.Errorf("project %d: slug is required", i)
		}
		if p.Title == "" {
			return nil, fmt.Errorf("project %q: title is required", p.Slug)
		}
		if !p.Category.IsConcrete() {
			return nil, fmt.Errorf("project %q: unknown category %q", p.Slug, p.Category)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("project %q: duplicate slug", p.Slug)
		}
		c.bySlug[p.Slug] = i
	}
	return c, nil
}

// Default returns the projects shown on the live site.
func Default() *Catalog {
	c, err := New(defaultProjects)
	if err != nil {
		panic("catalog: invalid default projects: " + err.Error())
	}
	return c
}

type catalogFile struct {
	Projects []domain.Project `yaml:"projects"`
}

// Load reads a YAML catalog of the form `projects: [{slug, title, category, accent_color}]`.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return New(f.Projects)
}

// Projects returns a copy of the catalog in insertion order.
func (c *Catalog) Projects() []domain.Project {
	out := make([]domain.Project, len(c.projects))
	copy(out, c.projects)
	return out
}

func (c *Catalog) Lookup(slug string) (domain.Project, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return domain.Project{}, false
	}
	return c.projects[i], true
}

// First is the project the admin screen selects when none is requested.
func (c *Catalog) First() domain.Project {
	return c.projects[0]
}

var defaultProjects = []domain.Project{
	{Slug: "brand-identity-system", Title: "Brand Identity System", Category: domain.CategoryBranding, AccentColor: "accent"},
	{Slug: "event-poster-series", Title: "Event Poster Series", Category: domain.CategoryPosters, AccentColor: "foreground"},
	{Slug: "digital-illustration", Title: "Digital Illustration", Category: domain.CategoryIllustrations, AccentColor: "accent"},
	{Slug: "magazine-layout", Title: "Magazine Layout", Category: domain.CategoryMagazineDesigns, AccentColor: "foreground"},
	{Slug: "logo-collection", Title: "Logo Collection", Category: domain.CategoryBranding, AccentColor: "foreground"},
	{Slug: "concert-posters", Title: "Concert Posters", Category: domain.CategoryPosters, AccentColor: "accent"},
	{Slug: "character-design", Title: "Character Design", Category: domain.CategoryIllustrations, AccentColor: "foreground"},
	{Slug: "editorial-spread", Title: "Editorial Spread", Category: domain.CategoryMagazineDesigns, AccentColor: "accent"},
	{Slug: "packaging-design", Title: "Packaging Design", Category: domain.CategoryOther, AccentColor: "foreground"},
}
