package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifiesForPromotion(t *testing.T) {
	tests := []struct {
		name                              string
		aesthetic, uniqueness, performance int
		want                              bool
	}{
		{"all at threshold", 85, 70, 80, true},
		{"all above", 95, 90, 99, true},
		{"aesthetic one short", 84, 90, 90, false},
		{"uniqueness one short", 90, 69, 90, false},
		{"performance one short", 90, 90, 79, false},
		{"all below", 10, 10, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CandidateComponent{
				AestheticScore:   tt.aesthetic,
				UniquenessScore:  tt.uniqueness,
				PerformanceScore: tt.performance,
			}
			assert.Equal(t, tt.want, c.QualifiesForPromotion())
		})
	}
}
