// Package site holds the copy of the public page and the timing of its reveal
// animations.
package site

type Hero struct {
	Eyebrow  string
	Name     string
	Subtitle string
	Stagger  string
	NavName  string
	Year     string
}

type About struct {
	Title    string
	Subtitle string
	Tagline  string
	Lines    []string
}

type Approach struct {
	Title string
	Text  string
}

type Contact struct {
	Title    string
	Accent   string
	Services []string
	Links    []string
}

type Footer struct {
	Copyright string
	Tagline   string
}

// Content is everything the public page says that is not a project.
type Content struct {
	Hero     Hero
	About    About
	Skills   []string
	Tools    []string
	Approach []Approach
	Contact  Contact
	Footer   Footer
}

var Default = Content{
	Hero: Hero{
		Eyebrow:  "Portfolio 2026",
		Name:     "RICHWIN JOSEPH",
		Subtitle: "CREATIVE DESIGNER",
		Stagger:  "I AM A DESIGNER",
		NavName:  "Richwin Joseph",
		Year:     "2026",
	},
	About: About{
		Title:    "ABOUT ME",
		Subtitle: "CREATIVE DESIGNER",
		Tagline:  "Specializing in Branding, Print, and Digital Solutions",
		Lines: []string{
			"With a background in design, I bring a blend of",
			"creativity and strategic thinking to every project.",
			"My expertise in branding, logo creation, print design,",
			"and social media allows me to craft cohesive visual",
			"narratives that resonate with audiences and fulfill",
			"business goals.",
		},
	},
	Skills: []string{
		"Graphic Design",
		"Branding Design",
		"Print Design",
		"Social Media",
		"UI/UX Design",
	},
	Tools: []string{"Ps", "Ai", "Ae"},
	Approach: []Approach{
		{
			Title: "Research and Strategy",
			Text:  "I start by understanding the brand's personality, market, and target audience.",
		},
		{
			Title: "Collaboration",
			Text:  "I work closely with cross-functional teams to ensure alignment and seamless integration.",
		},
	},
	Contact: Contact{
		Title:    "LET'S WORK",
		Accent:   "TOGETHER",
		Services: []string{"Graphic Design", "Branding Design", "Logo Design", "Print Media Design"},
		Links:    []string{"www.richwin.design", "@richwinjoseph"},
	},
	Footer: Footer{
		Copyright: "© 2026 Richwin Joseph",
		Tagline:   "Creative Designer Portfolio",
	},
}
