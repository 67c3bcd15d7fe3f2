package site

import (
	"math"
	"strconv"
)

// Reveal timings in seconds: a base delay and the step between consecutive elements.
const (
	HeroLettersBase  = 0.6
	HeroLettersStep  = 0.04
	HeroStaggerBase  = 1.6
	HeroStaggerStep  = 0.05
	AboutLinesBase   = 0.5
	AboutLinesStep   = 0.1
	SkillsBase       = 0.3
	SkillsStep       = 0.1
	ToolsBase        = 0.5
	ToolsStep        = 0.1
	ProjectCardsBase = 0.4
	ProjectCardsStep = 0.08
)

// Stagger is the delay of the i-th element of a sequence, rounded to milliseconds.
func Stagger(base, step float64, i int) float64 {
	return math.Round((base+float64(i)*step)*1000) / 1000
}

// CSS renders a delay as a CSS time value, e.g. "0.64s".
func CSS(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64) + "s"
}

type Glyph struct {
	Char  string
	Space bool
	Delay float64
}

// Letters splits text into per-character reveal steps. Spaces keep their slot in the
// sequence so the rhythm matches the typed text.
func Letters(text string, base, step float64) []Glyph {
	glyphs := make([]Glyph, 0, len(text))
	i := 0
	for _, r := range text {
		glyphs = append(glyphs, Glyph{
			Char:  string(r),
			Space: r == ' ',
			Delay: Stagger(base, step, i),
		})
		i++
	}
	return glyphs
}

type Line struct {
	Text  string
	Delay float64
}

func Lines(lines []string, base, step float64) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Text: l, Delay: Stagger(base, step, i)}
	}
	return out
}
