package catalog

import (
	"github.com/Zachkp/design-portfolio/internal/domain"
)

// CardAssets is what a project card renders besides its title.
type CardAssets struct {
	Thumbnail    *domain.MediaItem
	PreviewVideo *domain.MediaItem
	Documents    []domain.MediaItem
}

// Card pairs a project with the media selected for it.
type Card struct {
	Project    domain.Project
	Assets     CardAssets
	MediaCount int
}

// GroupMediaByProject partitions items by project slug in one pass. Every project gets
// an entry, empty when it has no media. Items whose slug is not in projects are
// returned as orphans and never rendered.
func GroupMediaByProject(projects []domain.Project, items []domain.MediaItem) (map[string][]domain.MediaItem, []domain.MediaItem) {
	groups := make(map[string][]domain.MediaItem, len(projects))
	for _, p := range projects {
		groups[p.Slug] = []domain.MediaItem{}
	}
	var orphans []domain.MediaItem
	for _, item := range items {
		group, ok := groups[item.ProjectSlug]
		if !ok {
			orphans = append(orphans, item)
			continue
		}
		groups[item.ProjectSlug] = append(group, item)
	}
	return groups, orphans
}

// SelectCardAssets picks at most one image and one video per card. The winner is the
// item with the lowest display order, then the oldest, then the smallest id, so the
// choice does not depend on fetch order. Every PDF is kept, in input order.
func SelectCardAssets(items []domain.MediaItem) CardAssets {
	var assets CardAssets
	assets.Documents = []domain.MediaItem{}
	for i := range items {
		item := items[i]
		switch item.FileType {
		case domain.FileTypeImage:
			if assets.Thumbnail == nil || precedes(item, *assets.Thumbnail) {
				assets.Thumbnail = &item
			}
		case domain.FileTypeVideo:
			if assets.PreviewVideo == nil || precedes(item, *assets.PreviewVideo) {
				assets.PreviewVideo = &item
			}
		case domain.FileTypePDF:
			assets.Documents = append(assets.Documents, item)
		}
	}
	return assets
}

func precedes(a, b domain.MediaItem) bool {
	if a.DisplayOrder != b.DisplayOrder {
		return a.DisplayOrder < b.DisplayOrder
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// FilterByCategory keeps catalog order. CategoryAll returns the input unchanged.
func FilterByCategory(projects []domain.Project, category domain.Category) []domain.Project {
	if category == domain.CategoryAll {
		return projects
	}
	filtered := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// BuildCards produces the cards of the projects grid for the selected category.
func BuildCards(projects []domain.Project, items []domain.MediaItem, category domain.Category) []Card {
	groups, _ := GroupMediaByProject(projects, items)
	visible := FilterByCategory(projects, category)
	cards := make([]Card, 0, len(visible))
	for _, p := range visible {
		media := groups[p.Slug]
		cards = append(cards, Card{
			Project:    p,
			Assets:     SelectCardAssets(media),
			MediaCount: len(media),
		})
	}
	return cards
}
