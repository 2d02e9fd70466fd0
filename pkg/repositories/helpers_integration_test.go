//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/testhelpers"
)

// resetTables clears every table touched by repository tests. Child tables
// first so foreign keys never block the delete.
func resetTables(t *testing.T, engineDB *testhelpers.EngineDB) {
	t.Helper()
	ctx := context.Background()

	tables := []string{
		"task_records",
		"learning_insights",
		"learning_patterns",
		"extracted_components",
		"component_performance",
		"component_embeddings",
		"components",
		"onboarding_sites",
	}
	for _, table := range tables {
		_, err := engineDB.DB.Exec(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to clear %s", table)
	}
}

// newTestComponent builds a valid component ready for Upsert.
func newTestComponent(name string) *models.Component {
	return &models.Component{
		ID:               uuid.New(),
		Name:             name,
		Description:      "test component",
		HTML:             `<section class="hero"></section>`,
		CSS:              ".hero { display: flex; }",
		ComponentType:    models.ComponentTypeHero,
		Category:         "marketing",
		Style:            "minimal",
		Tags:             []string{"gradient", "dark"},
		Complexity:       3,
		AestheticScore:   80,
		PerformanceScore: 90,
		Industries:       []string{"saas"},
		Frameworks:       []string{"vanilla"},
	}
}

// createTestSite inserts an onboarding site and returns it.
func createTestSite(t *testing.T, engineDB *testhelpers.EngineDB, domain string) *models.OnboardingSite {
	t.Helper()

	site := &models.OnboardingSite{Domain: domain, Industry: "fintech"}
	repo := NewSiteRepository(engineDB.DB)
	require.NoError(t, repo.Create(context.Background(), site))
	return site
}

func floatPtr(v float64) *float64 { return &v }
