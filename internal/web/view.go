package web

import (
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Zachkp/design-portfolio/internal/catalog"
	"github.com/Zachkp/design-portfolio/internal/domain"
	"github.com/Zachkp/design-portfolio/internal/site"
)

var templateFuncs = template.FuncMap{
	"css":   site.CSS,
	"upper": strings.ToUpper,
	"bytes": func(n int64) string { return humanize.IBytes(uint64(n)) },
	"ago":   func(t time.Time) string { return humanize.Time(t) },
	"delay": func(base, step float64, i int) string { return site.CSS(site.Stagger(base, step, i)) },
}

// SessionView is what templates know about the viewer's authentication.
type SessionView struct {
	State catalog.AdminState
	Email string
}

func (v SessionView) Authenticated() bool {
	return v.State == catalog.Authenticated
}

type cardView struct {
	catalog.Card
	Delay float64
}

type gridView struct {
	Tabs   []domain.Category
	Active domain.Category
	Cards  []cardView
}

func newGrid(cards []catalog.Card, active domain.Category) gridView {
	views := make([]cardView, len(cards))
	for i, card := range cards {
		views[i] = cardView{Card: card, Delay: site.Stagger(site.ProjectCardsBase, site.ProjectCardsStep, i)}
	}
	return gridView{Tabs: domain.FilterTabs(), Active: active, Cards: views}
}

type indexPage struct {
	Content site.Content
	Name    []site.Glyph
	Stagger []site.Glyph
	About   []site.Line
	Skills  []site.Line
	Tools   []site.Line
	Grid    gridView
	Session SessionView
	Notices []Notice
}

func newIndexPage(grid gridView, session SessionView, notices []Notice) indexPage {
	c := site.Default
	return indexPage{
		Content: c,
		Name:    site.Letters(c.Hero.Name, site.HeroLettersBase, site.HeroLettersStep),
		Stagger: site.Letters(c.Hero.Stagger, site.HeroStaggerBase, site.HeroStaggerStep),
		About:   site.Lines(c.About.Lines, site.AboutLinesBase, site.AboutLinesStep),
		Skills:  site.Lines(c.Skills, site.SkillsBase, site.SkillsStep),
		Tools:   site.Lines(c.Tools, site.ToolsBase, site.ToolsStep),
		Grid:    grid,
		Session: session,
		Notices: notices,
	}
}

type loginPage struct {
	SignUp      bool
	AllowSignUp bool
	Email       string
	Error       string
	Success     string
}

type adminPage struct {
	Email    string
	Projects []domain.Project
	Selected domain.Project
	Items    []domain.MediaItem
	Accept   string
	MaxSize  string
	Notices  []Notice
	// Stats is nil when visits are not tracked or could not be loaded.
	Stats *domain.VisitStats
}
