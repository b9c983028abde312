// Package classify maps repository paths to typed accomplishments.
package classify

import (
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// Platforms are the content channels under content/<platform>/.
var Platforms = []string{"linkedin", "x", "substack", "tiktok", "reddit"}

// FeatureComponents are shared website components scored as feature systems.
var FeatureComponents = []string{
	"DailyLogView", "LogCard", "LogHero", "LogDetailIntro", "AvatarBadge",
	"TypewriterHero", "SkillGuidePage",
}

// FeatureScripts are named scripts scored as feature systems.
var FeatureScripts = []string{"avatar_generator", "progression_engine", "daily_scan", "daily_dashboard"}

// ComplexScriptLines is the line count at which a script counts as complex.
const ComplexScriptLines = 400

// NoisePatterns are generated paths that never count as work.
var NoisePatterns = []string{"node_modules/", ".next/", ".turbo/", ".vercel/", "next-env.d.ts", "package-lock.json", ".gitkeep"}

var datePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_`)

// Result is the classification of a single path.
type Result struct {
	Type     string
	Category schema.Category
	Platform string
	Title    string
}

// Hint carries what the caller knows about a path beyond its name.
type Hint struct {
	Added bool                // path was created today
	Lines func() (int, error) // lazily counts lines of the file
}

// rule maps a glob pattern to an accomplishment type.
type rule struct {
	pattern  string
	typ      string
	category schema.Category
	platform string
	title    func(p string) string
	refine   func(p string, hint Hint) string // optional type override
}

// Classifier applies an ordered rule table, first match wins.
type Classifier struct {
	rules []rule
}

// NewClassifier returns a Classifier with the built-in rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// Classify returns the classification of a repo-relative path. Paths that
// match no rule are reported with ok=false.
func (c *Classifier) Classify(p string, hint Hint) (Result, bool) {
	p = strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "./")
	if contract.ShouldIgnore(p, NoisePatterns) {
		return Result{}, false
	}
	for _, r := range c.rules {
		if !matchRule(r.pattern, p) {
			continue
		}
		typ := r.typ
		if r.refine != nil {
			typ = r.refine(p, hint)
		}
		return Result{
			Type:     typ,
			Category: CategoryFor(typ),
			Platform: r.platform,
			Title:    r.title(p),
		}, true
	}
	return Result{}, false
}

// matchRule matches a pattern, expanding a trailing "|"-separated list of
// alternatives in the final segment.
func matchRule(pattern, p string) bool {
	dir, last := path.Split(pattern)
	for _, alt := range strings.Split(last, "|") {
		if contract.MatchGlob(dir+alt, p) {
			return true
		}
	}
	return false
}

// CategoryFor returns the class category of an accomplishment type.
func CategoryFor(typ string) schema.Category {
	switch {
	case strings.HasPrefix(typ, "partner_"), strings.HasPrefix(typ, "client_"):
		return schema.StrategistCategory
	case strings.HasSuffix(typ, "_final"), strings.HasSuffix(typ, "_draft"), typ == "lead_magnet":
		return schema.ScribeCategory
	}
	return schema.BuilderCategory
}

// DateFromName returns the YYYY-MM-DD prefix of a file name, or "".
func DateFromName(name string) string {
	if m := datePrefix.FindStringSubmatch(path.Base(name)); m != nil {
		return m[1]
	}
	return ""
}

// SlugTitle turns a file stem like 2026-02-11_my-post into "my post".
func SlugTitle(p string) string {
	stem := stemOf(p)
	stem = datePrefix.ReplaceAllString(stem, "")
	return strings.NewReplacer("-", " ", "_", " ").Replace(stem)
}

// PlatformOf returns the content platform of a path, or "".
func PlatformOf(p string) string {
	for _, plat := range Platforms {
		if strings.HasPrefix(p, "content/"+plat+"/") {
			return plat
		}
	}
	return ""
}

func stemOf(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// segment returns the i-th path segment, or "".
func segment(p string, i int) string {
	parts := strings.Split(p, "/")
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

func constTitle(s string) func(string) string {
	return func(string) string { return s }
}

func prefixedTitle(prefix string) func(string) string {
	return func(p string) string {
		return prefix + " " + strings.ReplaceAll(stemOf(p), "-", " ")
	}
}

func defaultRules() []rule {
	var rules []rule
	for _, plat := range Platforms {
		rules = append(rules,
			rule{pattern: "content/" + plat + "/final/**/*.md|*.txt", typ: plat + "_final", platform: plat, title: SlugTitle},
			rule{pattern: "content/" + plat + "/drafts/**/*.md", typ: plat + "_draft", platform: plat, title: SlugTitle},
		)
	}
	rules = append(rules, rule{pattern: "content/substack/lead-magnet/**/*.md", typ: "lead_magnet", platform: "substack", title: SlugTitle})

	for _, owner := range []string{"partner", "client"} {
		base := "clients/" + owner + "/*/"
		rules = append(rules,
			rule{pattern: base + "SKILL.md", typ: owner + "_onboard", title: constTitle(owner + " onboard skill")},
			rule{pattern: base + "prompts/**/*.md", typ: owner + "_prompt", title: prefixedTitle(owner)},
			rule{pattern: base + "research/**/*.md", typ: owner + "_research", title: prefixedTitle(owner)},
			rule{pattern: base + "workflows/**/*.md", typ: owner + "_workflow", title: prefixedTitle(owner)},
			rule{pattern: base + "resources/**/*.md", typ: owner + "_resource", title: prefixedTitle(owner)},
		)
	}

	rules = append(rules,
		rule{pattern: "website/**/turbo.json", typ: "monorepo_build", title: constTitle("Turborepo monorepo scaffold")},
		rule{pattern: "website/apps/*/app/page.tsx", typ: "landing_page", title: func(p string) string {
			return segment(p, 2) + " home page"
		}},
		rule{pattern: "website/apps/*/app/**/page.tsx", typ: "website_page", title: func(p string) string {
			return segment(p, 2) + " " + routeLabel(p, true) + " page"
		}},
		rule{pattern: "website/apps/*/app/**/route.ts|route.tsx", typ: "website_route", title: func(p string) string {
			label := routeLabel(p, false)
			if label == "" {
				label = "root"
			}
			return segment(p, 2) + " " + label + " route"
		}},
		rule{pattern: "website/packages/shared/components/*.tsx", typ: "website_component", title: stemOf, refine: featureOr("website_component")},
		rule{pattern: "website/packages/shared/pages/*.tsx", typ: "website_page", title: stemOf, refine: featureOr("website_page")},
		rule{pattern: "website/packages/shared/lib/*.ts", typ: "website_lib", title: prefixedTitle("shared")},
		rule{pattern: "website/packages/shared/**/index.ts", typ: "website_lib", title: constTitle("shared index")},
		rule{pattern: "website/**/*.css", typ: "website_style", title: func(p string) string { return stemOf(p) + " styles" }},
		rule{pattern: "website/**/taxonomy.yaml", typ: "code_infra", title: constTitle("taxonomy")},
		rule{pattern: "website/apps/*/app/layout.tsx", typ: "website_page", title: func(p string) string {
			return segment(p, 2) + " layout"
		}},
		rule{pattern: "website/**/next.config.ts", typ: "code_infra", title: func(p string) string {
			app := "root"
			if segment(p, 1) == "apps" && segment(p, 2) != "" {
				app = segment(p, 2)
			}
			return app + " next config"
		}},
		rule{pattern: "website/**/tsconfig.json|vercel.json|package.json", typ: "code_infra", title: func(p string) string {
			parts := strings.Split(p, "/")
			context := "root"
			if len(parts) >= 3 {
				context = parts[len(parts)-2]
			}
			return context + " " + stemOf(p)
		}},
		rule{pattern: "website/**/*.config.js|*.config.mjs", typ: "website_config", title: stemOf},
		rule{pattern: ".cursor/skills/**/SKILL.md", typ: "skill_updated", title: func(p string) string { return segment(p, 2) }, refine: skillRefine},
		rule{pattern: ".claude/skills/**/SKILL.md", typ: "skill_updated", title: func(p string) string { return segment(p, 2) }, refine: skillRefine},
		rule{pattern: ".cursor/rules/**/*.md|*.mdc", typ: "cursor_rule", title: stemOf},
		rule{pattern: "workflows/**/*.md", typ: "workflow_updated", title: stemOf},
		rule{pattern: "scripts/**/*.py", typ: "code_infra", title: stemOf, refine: scriptRefine},
		rule{pattern: "**/*.py", typ: "script", title: stemOf},
	)
	return rules
}

// routeLabel renders the directories between app/ and the file as a label.
func routeLabel(p string, stripBrackets bool) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 5 {
		return ""
	}
	label := strings.Join(parts[4:len(parts)-1], " ")
	if stripBrackets {
		label = strings.NewReplacer("[", "", "]", "").Replace(label)
	}
	return label
}

func featureOr(fallback string) func(string, Hint) string {
	return func(p string, _ Hint) string {
		if slices.Contains(FeatureComponents, stemOf(p)) {
			return "feature_system"
		}
		return fallback
	}
}

func skillRefine(_ string, hint Hint) string {
	if hint.Added {
		return "skill_created"
	}
	return "skill_updated"
}

func scriptRefine(p string, hint Hint) string {
	slug := stemOf(p)
	switch {
	case slug == "rpg_sprites":
		return "system_engine"
	case slices.Contains(FeatureScripts, slug):
		return "feature_script"
	}
	if hint.Lines != nil {
		if n, err := hint.Lines(); err == nil && n >= ComplexScriptLines {
			return "complex_script"
		}
	}
	return "code_infra"
}
