package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/domain"
	"github.com/naka-gawa/github-recap/internal/gateway"
)

// Analyzer is the use case for loading a recap and deriving its insights.
type Analyzer struct {
	source gateway.Source
	logger *zap.Logger
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(source gateway.Source, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		source: source,
		logger: logger,
	}
}

// Analyze loads the named recap and derives its achievements and stats.
func (a *Analyzer) Analyze(ctx context.Context, name string) (*domain.Recap, domain.Insights, error) {
	a.logger.Debug("starting analysis", zap.String("recap", name))

	recap, err := a.source.FetchRecap(ctx, name)
	if err != nil {
		return nil, domain.Insights{}, fmt.Errorf("failed to fetch recap: %w", err)
	}

	insights := Derive(recap)
	a.logger.Debug("analysis complete",
		zap.String("user", recap.Meta.User),
		zap.Int("achievements", len(insights.Achievements)),
	)
	return recap, insights, nil
}

// Derive computes the insights of a recap that is already in memory.
func Derive(recap *domain.Recap) domain.Insights {
	return domain.Insights{
		Achievements: Achievements(recap),
		Stats:        AdditionalStats(recap),
	}
}
