package services

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/models"
)

// Markup cleaning patterns. Scraped payloads are untrusted; everything
// executable is stripped before a candidate is stored.
var (
	scriptTagPattern    = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	htmlCommentPattern  = regexp.MustCompile(`(?s)<!--.*?-->`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
	jsURLPattern        = regexp.MustCompile(`(?i)(href|src)\s*=\s*(?:"javascript:[^"]*"|'javascript:[^']*')`)
	cssCommentPattern   = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// CleanMarkup sanitizes scraped component markup. HTML is repaired: script
// tags, comments, inline event handlers and javascript: URLs are stripped.
// The CSS and JS fields must not smuggle markup at all; payloads that trip
// the injection screen are refused outright.
func CleanMarkup(rawHTML, rawCSS, rawJS string) (html, css, js string, err error) {
	for _, payload := range []string{rawCSS, rawJS} {
		if libinjection.IsXSS(payload) {
			return "", "", "", fmt.Errorf("markup failed injection screen: %w", apperrors.ErrValidation)
		}
	}

	html = scriptTagPattern.ReplaceAllString(rawHTML, "")
	html = htmlCommentPattern.ReplaceAllString(html, "")
	html = eventHandlerPattern.ReplaceAllString(html, "")
	html = jsURLPattern.ReplaceAllString(html, `$1=""`)
	html = strings.TrimSpace(html)

	css = cssCommentPattern.ReplaceAllString(rawCSS, "")
	css = strings.TrimSpace(css)

	js = strings.TrimSpace(rawJS)
	return html, css, js, nil
}

// typeSignals maps component types to markup keywords, checked in order so
// more specific types win over generic containers.
var typeSignals = []struct {
	componentType string
	keywords      []string
}{
	{models.ComponentTypePricing, []string{"pricing", "price", "/mo", "per month"}},
	{models.ComponentTypeTestimonial, []string{"testimonial", "review", "quote", "blockquote"}},
	{models.ComponentTypeNavbar, []string{"<nav", "navbar", "menu-toggle"}},
	{models.ComponentTypeFooter, []string{"<footer", "footer"}},
	{models.ComponentTypeHero, []string{"hero", "jumbotron", "banner"}},
	{models.ComponentTypeForm, []string{"<form", "<input", "<textarea", "submit"}},
	{models.ComponentTypeGallery, []string{"gallery", "carousel", "slider", "lightbox"}},
	{models.ComponentTypeCard, []string{"card", "tile"}},
	{models.ComponentTypeButton, []string{"<button", "btn", "cta"}},
}

// DetectComponentType classifies cleaned markup by keyword signals, falling
// back to the generic section type.
func DetectComponentType(html string) string {
	lower := strings.ToLower(html)
	for _, sig := range typeSignals {
		for _, kw := range sig.keywords {
			if strings.Contains(lower, kw) {
				return sig.componentType
			}
		}
	}
	return models.ComponentTypeGeneric
}

// Aesthetic rubric signals. Each positive signal rewards a modern styling
// technique; each negative one penalizes a maintenance hazard.
var (
	aestheticPositive = []struct {
		signal string
		points int
	}{
		{"gradient", 8},
		{"box-shadow", 6},
		{"display:flex", 7},
		{"display: flex", 7},
		{"display:grid", 7},
		{"display: grid", 7},
		{"@media", 8},
		{"rem", 4},
		{"em", 2},
		{"--", 5}, // custom properties
		{"transition", 6},
		{"border-radius", 4},
		{"transform", 4},
	}
	aestheticNegative = []struct {
		signal string
		points int
	}{
		{"!important", 8},
		{"style=", 6},
		{"float:", 5},
		{"float: ", 5},
		{"<table", 10},
	}
)

// ScoreAesthetics rates cleaned CSS (plus HTML for structural penalties)
// on a 1-100 rubric of styling signals.
func ScoreAesthetics(html, css string) int {
	lowerCSS := strings.ToLower(css)
	lowerHTML := strings.ToLower(html)

	score := 40
	for _, p := range aestheticPositive {
		if strings.Contains(lowerCSS, p.signal) {
			score += p.points
		}
	}
	for _, n := range aestheticNegative {
		if strings.Contains(lowerCSS, n.signal) || strings.Contains(lowerHTML, n.signal) {
			score -= n.points
		}
	}
	return clampScore(score)
}

// ScorePerformance rates cleaned markup by payload weight and script burden.
// Lighter components score higher.
func ScorePerformance(html, css, js string) int {
	score := 100

	total := len(html) + len(css) + len(js)
	score -= total / 1000 // -1 per KB of payload

	if len(js) > 0 {
		score -= 10 + len(js)/500
	}
	if strings.Count(strings.ToLower(html), "<img") > 3 {
		score -= 10
	}
	if strings.Contains(strings.ToLower(css), "@import") {
		score -= 8
	}
	return clampScore(score)
}

// ScoreUniqueness scores the ratio of distinct characters to total length,
// scaled to 1-100. A weak proxy for structural novelty, but promotion
// behavior is calibrated against it: repetitive boilerplate recycles a
// narrow vocabulary over a long run and lands near the floor.
func ScoreUniqueness(html, css string) int {
	combined := html + css
	if combined == "" {
		return models.MinScore
	}

	distinct := make(map[rune]bool)
	total := 0
	for _, r := range combined {
		distinct[r] = true
		total++
	}
	return clampScore(len(distinct) * 100 / total)
}

// componentCategories maps detected component types onto catalog categories.
var componentCategories = map[string]string{
	models.ComponentTypeHero:        "marketing",
	models.ComponentTypePricing:     "marketing",
	models.ComponentTypeTestimonial: "marketing",
	models.ComponentTypeNavbar:      "navigation",
	models.ComponentTypeFooter:      "navigation",
	models.ComponentTypeForm:        "interaction",
	models.ComponentTypeButton:      "interaction",
	models.ComponentTypeGallery:     "media",
	models.ComponentTypeCard:        "content",
}

// CategoryForType returns the catalog category a detected type belongs to.
func CategoryForType(componentType string) string {
	if category, ok := componentCategories[componentType]; ok {
		return category
	}
	return "content"
}

func clampScore(v int) int {
	if v < models.MinScore {
		return models.MinScore
	}
	if v > models.MaxScore {
		return models.MaxScore
	}
	return v
}
