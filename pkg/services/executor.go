package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/llm"
	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/repositories"
)

// Prompt enrichment limits. Enrichment is best effort: a failing trend or
// catalog read degrades the prompt, never the task.
const (
	enrichTrendCount     = 5
	enrichComponentCount = 3
	fallbackTokenDivisor = 4
)

// TaskExecutor runs orchestration tasks end to end: provider selection,
// prompt assembly, invocation, and audit recording.
type TaskExecutor interface {
	// Execute runs a task with the best eligible provider.
	Execute(ctx context.Context, taskCtx *models.TaskContext) (*models.TaskResult, error)

	// ExecuteExcluding runs a task skipping the named providers. Callers use
	// this to retry a failed task on a different provider.
	ExecuteExcluding(ctx context.Context, taskCtx *models.TaskContext, exclude []string) (*models.TaskResult, error)
}

type taskExecutor struct {
	registry   *ProviderRegistry
	invoker    llm.ProviderInvoker
	tasks      repositories.TaskRepository
	components repositories.ComponentRepository
	trends     TrendService
	logger     *zap.Logger

	// Bounds concurrent provider calls across all requests.
	sem            chan struct{}
	defaultTimeout time.Duration
}

// NewTaskExecutor creates a new executor. maxConcurrent bounds in-flight
// provider invocations; defaultTimeout applies when a task sets no
// MaxResponseTime budget.
func NewTaskExecutor(
	registry *ProviderRegistry,
	invoker llm.ProviderInvoker,
	tasks repositories.TaskRepository,
	components repositories.ComponentRepository,
	trends TrendService,
	maxConcurrent int,
	defaultTimeout time.Duration,
	logger *zap.Logger,
) TaskExecutor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if defaultTimeout <= 0 {
		defaultTimeout = 60 * time.Second
	}
	return &taskExecutor{
		registry:       registry,
		invoker:        invoker,
		tasks:          tasks,
		components:     components,
		trends:         trends,
		logger:         logger.Named("executor"),
		sem:            make(chan struct{}, maxConcurrent),
		defaultTimeout: defaultTimeout,
	}
}

var _ TaskExecutor = (*taskExecutor)(nil)

// Execute runs a task with the best eligible provider.
func (e *taskExecutor) Execute(ctx context.Context, taskCtx *models.TaskContext) (*models.TaskResult, error) {
	return e.ExecuteExcluding(ctx, taskCtx, nil)
}

// ExecuteExcluding runs a task skipping the named providers.
func (e *taskExecutor) ExecuteExcluding(ctx context.Context, taskCtx *models.TaskContext, exclude []string) (*models.TaskResult, error) {
	provider, err := e.registry.SelectExcluding(taskCtx, exclude)
	if err != nil {
		return nil, err
	}

	prompt := e.buildPrompt(ctx, taskCtx)

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	timeout := e.defaultTimeout
	if taskCtx.Budget != nil && taskCtx.Budget.MaxResponseTime > 0 {
		timeout = taskCtx.Budget.MaxResponseTime
	}
	invokeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, invokeErr := e.invoker.Invoke(invokeCtx, provider, prompt)
	elapsed := time.Since(start)

	rec := &models.TaskRecord{
		TaskType:     taskCtx.TaskType,
		Provider:     provider.Name,
		Prompt:       prompt,
		ResponseTime: elapsed,
		Success:      invokeErr == nil,
	}

	if invokeErr != nil {
		rec.ErrorKind = string(llm.GetErrorType(invokeErr))
		e.record(ctx, rec)
		e.logger.Warn("task failed",
			zap.String("task_type", taskCtx.TaskType),
			zap.String("provider", provider.Name),
			zap.String("error_kind", rec.ErrorKind),
			zap.Error(invokeErr))
		return nil, fmt.Errorf("provider %q: %w: %w", provider.Name, apperrors.ErrProviderFailure, invokeErr)
	}

	tokens := res.TokensUsed
	if tokens <= 0 {
		// No usage reported: estimate from everything that crossed the wire.
		tokens = (len(prompt) + len(res.Content)) / fallbackTokenDivisor
	}
	result := &models.TaskResult{
		TaskType:    taskCtx.TaskType,
		Content:     res.Content,
		Suggestions: res.Suggestions,
	}
	rec.Result = result
	rec.EstimatedTokens = tokens
	rec.Cost = float64(tokens) * provider.CostPerToken
	e.record(ctx, rec)

	e.logger.Info("task executed",
		zap.String("task_type", taskCtx.TaskType),
		zap.String("provider", provider.Name),
		zap.Int("estimated_tokens", tokens),
		zap.Float64("cost", rec.Cost),
		zap.Duration("response_time", elapsed))

	return result, nil
}

// record persists the audit record. Audit failures are logged, not surfaced:
// the task outcome already happened and must be reported to the caller.
func (e *taskExecutor) record(ctx context.Context, rec *models.TaskRecord) {
	if err := e.tasks.Create(ctx, rec); err != nil {
		e.logger.Error("failed to persist task record",
			zap.String("task_type", rec.TaskType),
			zap.String("provider", rec.Provider),
			zap.Error(err))
	}
}

// buildPrompt assembles the provider prompt from the task context plus
// best-effort catalog and trend enrichment.
func (e *taskExecutor) buildPrompt(ctx context.Context, taskCtx *models.TaskContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\nPriority: %s\n", taskCtx.TaskType, taskCtx.Priority)
	if taskCtx.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", taskCtx.Industry)
	}
	if taskCtx.BusinessGoal != "" {
		fmt.Fprintf(&b, "Business goal: %s\n", taskCtx.BusinessGoal)
	}
	if len(taskCtx.TechnicalRequirements) > 0 {
		fmt.Fprintf(&b, "Technical requirements: %s\n", strings.Join(taskCtx.TechnicalRequirements, ", "))
	}
	// Stable order: identical contexts must yield identical prompts.
	for _, name := range sortedKeys(taskCtx.PerformanceTargets) {
		fmt.Fprintf(&b, "Target %s: %.2f\n", name, taskCtx.PerformanceTargets[name])
	}

	if e.trends != nil {
		if trends, err := e.trends.AnalyzeTrends(ctx, 0); err == nil && len(trends) > 0 {
			n := enrichTrendCount
			if len(trends) < n {
				n = len(trends)
			}
			names := make([]string, 0, n)
			for _, t := range trends[:n] {
				names = append(names, t.Name)
			}
			fmt.Fprintf(&b, "Current design trends: %s\n", strings.Join(names, ", "))
		} else if err != nil {
			e.logger.Debug("trend enrichment skipped", zap.Error(err))
		}
	}

	if e.components != nil {
		if top, err := e.components.TopPerforming(ctx, enrichComponentCount); err == nil && len(top) > 0 {
			names := make([]string, 0, len(top))
			for _, c := range top {
				names = append(names, fmt.Sprintf("%s (%s)", c.Name, c.ComponentType))
			}
			fmt.Fprintf(&b, "Top performing components: %s\n", strings.Join(names, ", "))
		} else if err != nil {
			e.logger.Debug("catalog enrichment skipped", zap.Error(err))
		}
	}

	return b.String()
}
