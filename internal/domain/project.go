// Package domain defines the portfolio's entities and the ports the rest of the
// application talks to: the media row store, the user store and the error taxonomy
// shared by every layer.
package domain

// Category is one of the fixed gallery categories.
type Category string

const (
	CategoryAll             Category = "All"
	CategoryPosters         Category = "Posters"
	CategoryBranding        Category = "Branding Identities"
	CategoryIllustrations   Category = "Illustrations"
	CategoryMagazineDesigns Category = "Magazine Designs"
	CategoryOther           Category = "Other Projects"
)

// Categories lists the concrete categories in display order. CategoryAll is not included.
var Categories = []Category{
	CategoryPosters,
	CategoryBranding,
	CategoryIllustrations,
	CategoryMagazineDesigns,
	CategoryOther,
}

// FilterTabs is the tab order on the projects section, sentinel first.
func FilterTabs() []Category {
	tabs := make([]Category, 0, len(Categories)+1)
	tabs = append(tabs, CategoryAll)
	return append(tabs, Categories...)
}

// ParseCategory matches s exactly against the closed category set, CategoryAll included.
func ParseCategory(s string) (Category, bool) {
	if Category(s) == CategoryAll {
		return CategoryAll, true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// IsConcrete reports whether c is a real category rather than the All sentinel.
func (c Category) IsConcrete() bool {
	parsed, ok := ParseCategory(string(c))
	return ok && parsed != CategoryAll
}

// Project is an entry of the compiled-in catalog.
type Project struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Title       string   `json:"title" yaml:"title"`
	Category    Category `json:"category" yaml:"category"`
	AccentColor string   `json:"accent_color,omitempty" yaml:"accent_color,omitempty"`
}
