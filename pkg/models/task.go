package models

import (
	"time"

	"github.com/google/uuid"
)

// Task types routed through the orchestrator.
const (
	TaskTypeComponentSelection = "component_selection"
	TaskTypeDesignGeneration   = "design_generation"
	TaskTypeTrendAnalysis      = "trend_analysis"
	TaskTypeOptimization       = "optimization"
	TaskTypeQualityAssessment  = "quality_assessment"
)

// ValidTaskType reports whether t is a known task type.
func ValidTaskType(t string) bool {
	switch t {
	case TaskTypeComponentSelection, TaskTypeDesignGeneration,
		TaskTypeTrendAnalysis, TaskTypeOptimization, TaskTypeQualityAssessment:
		return true
	}
	return false
}

// Task priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// BudgetConstraints caps what one task execution may spend.
type BudgetConstraints struct {
	MaxCostPerTask  float64       `json:"max_cost_per_task,omitempty"`
	MaxResponseTime time.Duration `json:"max_response_time,omitempty"`
}

// TaskContext is the request for one orchestration task. Created per
// invocation and never persisted beyond the resulting TaskRecord.
type TaskContext struct {
	TaskType              string             `json:"task_type"`
	Priority              string             `json:"priority"`
	Industry              string             `json:"industry,omitempty"`
	BusinessGoal          string             `json:"business_goal,omitempty"`
	TechnicalRequirements []string           `json:"technical_requirements,omitempty"`
	PerformanceTargets    map[string]float64 `json:"performance_targets,omitempty"`
	Budget                *BudgetConstraints `json:"budget,omitempty"`
}

// TaskResult is the structured payload returned by a provider invocation.
// Replaces the open metadata maps of earlier iterations with a tagged shape
// shared by all task kinds.
type TaskResult struct {
	TaskType    string   `json:"task_type"`
	Content     string   `json:"content"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// TaskRecord is the append-only audit trail of one executed task.
type TaskRecord struct {
	ID              uuid.UUID     `json:"id"`
	TaskType        string        `json:"task_type"`
	Provider        string        `json:"provider"`
	Prompt          string        `json:"prompt"`
	Result          *TaskResult   `json:"result,omitempty"`
	Cost            float64       `json:"cost"`
	ResponseTime    time.Duration `json:"response_time"`
	EstimatedTokens int           `json:"estimated_tokens"`
	Success         bool          `json:"success"`
	ErrorKind       string        `json:"error_kind,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
