package classify

import (
	"errors"
	"testing"

	"github.com/huangsam/dailyxp/schema"
	"github.com/stretchr/testify/assert"
)

// TestClassify tests the rule table against representative paths.
func TestClassify(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		path     string
		typ      string
		title    string
		platform string
		category schema.Category
	}{
		{"content/linkedin/final/2026-02-11_ship-it.md", "linkedin_final", "ship it", "linkedin", schema.ScribeCategory},
		{"content/x/final/thread.txt", "x_final", "thread", "x", schema.ScribeCategory},
		{"content/reddit/drafts/2026-02-12_hot_take.md", "reddit_draft", "hot take", "reddit", schema.ScribeCategory},
		{"content/substack/lead-magnet/starter-kit.md", "lead_magnet", "starter kit", "substack", schema.ScribeCategory},
		{"clients/partner/acme/SKILL.md", "partner_onboard", "partner onboard skill", "", schema.StrategistCategory},
		{"clients/partner/acme/prompts/web-reveal.md", "partner_prompt", "partner web reveal", "", schema.StrategistCategory},
		{"clients/client/beta/research/icp.md", "client_research", "client icp", "", schema.StrategistCategory},
		{"clients/client/beta/resources/contacts.md", "client_resource", "client contacts", "", schema.StrategistCategory},
		{"website/turbo.json", "monorepo_build", "Turborepo monorepo scaffold", "", schema.BuilderCategory},
		{"website/apps/shawnos/app/page.tsx", "landing_page", "shawnos home page", "", schema.BuilderCategory},
		{"website/apps/shawnos/app/blog/[slug]/page.tsx", "website_page", "shawnos blog slug page", "", schema.BuilderCategory},
		{"website/apps/shawnos/app/api/feed/route.ts", "website_route", "shawnos api feed route", "", schema.BuilderCategory},
		{"website/apps/shawnos/app/route.tsx", "website_route", "shawnos root route", "", schema.BuilderCategory},
		{"website/packages/shared/components/LogHero.tsx", "feature_system", "LogHero", "", schema.BuilderCategory},
		{"website/packages/shared/components/Footer.tsx", "website_component", "Footer", "", schema.BuilderCategory},
		{"website/packages/shared/lib/format-date.ts", "website_lib", "shared format date", "", schema.BuilderCategory},
		{"website/packages/shared/index.ts", "website_lib", "shared index", "", schema.BuilderCategory},
		{"website/apps/shawnos/app/globals.css", "website_style", "globals styles", "", schema.BuilderCategory},
		{"website/apps/shawnos/app/layout.tsx", "website_page", "shawnos layout", "", schema.BuilderCategory},
		{"website/apps/shawnos/next.config.ts", "code_infra", "shawnos next config", "", schema.BuilderCategory},
		{"website/packages/shared/package.json", "code_infra", "shared package", "", schema.BuilderCategory},
		{"website/apps/shawnos/postcss.config.mjs", "website_config", "postcss.config", "", schema.BuilderCategory},
		{".cursor/skills/daily-tracker/SKILL.md", "skill_updated", "daily-tracker", "", schema.BuilderCategory},
		{".cursor/rules/voice.md", "cursor_rule", "voice", "", schema.BuilderCategory},
		{"workflows/substack-index.md", "workflow_updated", "substack-index", "", schema.BuilderCategory},
		{"scripts/rpg_sprites.py", "system_engine", "rpg_sprites", "", schema.BuilderCategory},
		{"scripts/daily_scan.py", "feature_script", "daily_scan", "", schema.BuilderCategory},
		{"scripts/cleanup.py", "code_infra", "cleanup", "", schema.BuilderCategory},
		{"content/images/gen_tree.py", "script", "gen_tree", "", schema.BuilderCategory},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, ok := c.Classify(tt.path, Hint{})
			assert.True(t, ok)
			assert.Equal(t, Result{Type: tt.typ, Title: tt.title, Platform: tt.platform, Category: tt.category}, res)
		})
	}
}

// TestClassifyIgnored tests that unmatched and noisy paths are skipped.
func TestClassifyIgnored(t *testing.T) {
	c := NewClassifier()
	for _, p := range []string{
		"README.md",
		"content/linkedin/final/image.png",
		"website/node_modules/react/index.ts",
		"website/apps/shawnos/.next/server/page.tsx",
		"content/linkedin/final/.gitkeep",
		"data/daily-log/2026-02-11.json",
	} {
		_, ok := c.Classify(p, Hint{})
		assert.False(t, ok, p)
	}
}

// TestClassifyHints tests the type refinements that depend on file state.
func TestClassifyHints(t *testing.T) {
	c := NewClassifier()

	res, _ := c.Classify(".claude/skills/scan/SKILL.md", Hint{Added: true})
	assert.Equal(t, "skill_created", res.Type)

	long := Hint{Lines: func() (int, error) { return ComplexScriptLines, nil }}
	res, _ = c.Classify("scripts/enrich_leads.py", long)
	assert.Equal(t, "complex_script", res.Type)

	short := Hint{Lines: func() (int, error) { return ComplexScriptLines - 1, nil }}
	res, _ = c.Classify("scripts/enrich_leads.py", short)
	assert.Equal(t, "code_infra", res.Type)

	broken := Hint{Lines: func() (int, error) { return 0, errors.New("permission denied") }}
	res, _ = c.Classify("scripts/enrich_leads.py", broken)
	assert.Equal(t, "code_infra", res.Type)
}

// TestCategoryFor tests class category lookup by type.
func TestCategoryFor(t *testing.T) {
	assert.Equal(t, schema.ScribeCategory, CategoryFor("tiktok_final"))
	assert.Equal(t, schema.ScribeCategory, CategoryFor("x_draft"))
	assert.Equal(t, schema.StrategistCategory, CategoryFor("client_onboard"))
	assert.Equal(t, schema.BuilderCategory, CategoryFor("manual"))
}

// TestDateFromName tests date prefix extraction.
func TestDateFromName(t *testing.T) {
	assert.Equal(t, "2026-02-11", DateFromName("content/x/drafts/2026-02-11_post.md"))
	assert.Equal(t, "", DateFromName("content/x/drafts/post-2026-02-11.md"))
	assert.Equal(t, "", DateFromName("2026-02-11.md"))
}
