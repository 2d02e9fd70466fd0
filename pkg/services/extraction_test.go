package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/models"
)

func TestCleanMarkup_StripsScriptTags(t *testing.T) {
	html, _, _, err := CleanMarkup(
		`<div class="hero"><script>alert(1)</script><h1>Welcome</h1></div>`, "", "")
	require.NoError(t, err)

	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "alert")
	assert.Contains(t, html, "<h1>Welcome</h1>")
}

func TestCleanMarkup_StripsEventHandlers(t *testing.T) {
	html, _, _, err := CleanMarkup(
		`<button onclick="steal()" onmouseover='track()' class="btn">Buy</button>`, "", "")
	require.NoError(t, err)

	assert.NotContains(t, html, "onclick")
	assert.NotContains(t, html, "onmouseover")
	assert.Contains(t, html, `class="btn"`)
}

func TestCleanMarkup_StripsCommentsAndJSURLs(t *testing.T) {
	html, _, _, err := CleanMarkup(
		`<!-- internal note --><a href="javascript:void(0)">link</a>`, "", "")
	require.NoError(t, err)

	assert.NotContains(t, html, "internal note")
	assert.NotContains(t, html, "javascript:")
}

func TestCleanMarkup_RejectsInjectionInCSS(t *testing.T) {
	_, _, _, err := CleanMarkup("<div>ok</div>", `</style><script>alert(document.cookie)</script>`, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCleanMarkup_StripsCSSComments(t *testing.T) {
	_, css, _, err := CleanMarkup("<div>x</div>", "/* vendor reset */ .btn { color: red; }", "")
	require.NoError(t, err)

	assert.NotContains(t, css, "vendor reset")
	assert.Contains(t, css, ".btn { color: red; }")
}

func TestDetectComponentType(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"pricing", `<div class="pricing-table">$29/mo</div>`, models.ComponentTypePricing},
		{"navbar", `<nav class="top"><a>Home</a></nav>`, models.ComponentTypeNavbar},
		{"footer", `<footer><p>2026</p></footer>`, models.ComponentTypeFooter},
		{"hero", `<div class="hero-banner"><h1>Big</h1></div>`, models.ComponentTypeHero},
		{"form", `<form><input type="email"></form>`, models.ComponentTypeForm},
		{"gallery", `<div class="image-carousel"></div>`, models.ComponentTypeGallery},
		{"card", `<div class="card shadow"></div>`, models.ComponentTypeCard},
		{"button", `<button>Go</button>`, models.ComponentTypeButton},
		{"testimonial", `<blockquote>Great product</blockquote>`, models.ComponentTypeTestimonial},
		{"generic fallback", `<div><p>plain text</p></div>`, models.ComponentTypeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectComponentType(tt.html))
		})
	}
}

func TestScoreAesthetics_RewardsModernCSS(t *testing.T) {
	modern := `
		.hero { display: flex; background: linear-gradient(#fff, #eee);
			box-shadow: 0 2px 4px; border-radius: 8px; transition: all 0.2s; }
		@media (max-width: 600px) { .hero { padding: 1rem; } }`
	dated := `.hero { float: left; } .x { color: red !important; }`

	modernScore := ScoreAesthetics("<div></div>", modern)
	datedScore := ScoreAesthetics("<table><tr><td>layout</td></tr></table>", dated)

	assert.Greater(t, modernScore, datedScore)
	assert.GreaterOrEqual(t, modernScore, models.MinScore)
	assert.LessOrEqual(t, modernScore, models.MaxScore)
	assert.GreaterOrEqual(t, datedScore, models.MinScore)
}

func TestScoreAesthetics_AlwaysInRange(t *testing.T) {
	assert.GreaterOrEqual(t, ScoreAesthetics("", ""), models.MinScore)
	huge := strings.Repeat("gradient box-shadow display:flex @media rem -- transition border-radius transform ", 10)
	assert.LessOrEqual(t, ScoreAesthetics("", huge), models.MaxScore)
}

func TestScorePerformance_PenalizesHeavyPayloads(t *testing.T) {
	light := ScorePerformance("<button>Go</button>", ".btn{color:red}", "")
	heavy := ScorePerformance(
		strings.Repeat("<div>filler</div>", 2000),
		strings.Repeat(".x{margin:0}", 2000),
		strings.Repeat("var x = 1;", 500))

	assert.Greater(t, light, heavy)
	assert.GreaterOrEqual(t, heavy, models.MinScore)
	assert.LessOrEqual(t, light, models.MaxScore)
}

func TestScoreUniqueness_FavorsDiversePayloads(t *testing.T) {
	repetitive := strings.Repeat("<div></div>", 100)
	diverse := `<section class="pricing-grid" data-plan="enterprise">
		<h2>Scale &amp; Grow</h2><ul><li>24/7 support — $99</li></ul></section>` +
		`.pricing-grid { display: grid; gap: 1.5rem; background: #f7f3e9; }`

	assert.Greater(t, ScoreUniqueness(diverse, ""), ScoreUniqueness(repetitive, ""))
	assert.Equal(t, models.MinScore, ScoreUniqueness("", ""))
}

func TestScoreUniqueness_DistinctToTotalRatio(t *testing.T) {
	// Every character distinct: full marks.
	assert.Equal(t, models.MaxScore, ScoreUniqueness("abcd", "efgh"))

	// Two distinct characters over two hundred: floor.
	assert.Equal(t, models.MinScore, ScoreUniqueness(strings.Repeat("ab", 100), ""))

	// Half distinct, scaled to 50.
	assert.Equal(t, 50, ScoreUniqueness("aabbccdd", ""))
}

func TestScoreUniqueness_LongBoilerplateScoresFloor(t *testing.T) {
	// A long payload built from one repeated block has a tiny distinct-to-
	// total ratio no matter how varied the block itself is.
	block := `<li class="feature-row" data-id="x7">Plans &amp; $9</li>` + "\n"
	payload := strings.Repeat(block, 200)

	assert.Equal(t, models.MinScore, ScoreUniqueness(payload, ""))
}

func TestCategoryForType(t *testing.T) {
	assert.Equal(t, "marketing", CategoryForType(models.ComponentTypeHero))
	assert.Equal(t, "marketing", CategoryForType(models.ComponentTypePricing))
	assert.Equal(t, "navigation", CategoryForType(models.ComponentTypeFooter))
	assert.Equal(t, "interaction", CategoryForType(models.ComponentTypeForm))
	assert.Equal(t, "media", CategoryForType(models.ComponentTypeGallery))
	assert.Equal(t, "content", CategoryForType(models.ComponentTypeGeneric))
	assert.Equal(t, "content", CategoryForType("widget"))
}
