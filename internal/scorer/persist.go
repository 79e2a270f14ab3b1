package scorer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// LeadStore is the slice of the storage layer the scorer needs.
type LeadStore interface {
	ListUnscored(ctx context.Context) ([]*model.Lead, error)
	ListAll(ctx context.Context) ([]*model.Lead, error)
	UpdateScore(ctx context.Context, id string, score int, reason string, status model.LeadStatus) error
}

// Summary reports a scoring run.
type Summary struct {
	Scored int
	Hot    int
	Warm   int
	Errors int
}

// ScoreUnscored evaluates every lead with status new and persists the
// result. Per-lead failures are logged and skipped so one bad row never
// aborts the run.
func ScoreUnscored(ctx context.Context, st LeadStore, rules Rules) (Summary, error) {
	leads, err := st.ListUnscored(ctx)
	if err != nil {
		return Summary{}, eris.Wrap(err, "listing unscored leads")
	}
	return scoreAndPersist(ctx, st, rules, leads)
}

// Rescore re-evaluates every lead regardless of status, refreshing scores
// after a rule change. Statuses past scored are left alone.
func Rescore(ctx context.Context, st LeadStore, rules Rules) (Summary, error) {
	leads, err := st.ListAll(ctx)
	if err != nil {
		return Summary{}, eris.Wrap(err, "listing leads for rescore")
	}
	return scoreAndPersist(ctx, st, rules, leads)
}

func scoreAndPersist(ctx context.Context, st LeadStore, rules Rules, leads []*model.Lead) (Summary, error) {
	log := zap.L().With(zap.String("component", "scorer"))
	var sum Summary
	for _, lead := range leads {
		if err := ctx.Err(); err != nil {
			return sum, eris.Wrap(err, "scoring interrupted")
		}
		res := rules.Score(lead)

		// No-match leads stay new so the next plain scoring run picks them
		// up again after a rule change. Statuses past scored never regress.
		status := lead.Status
		if status == model.StatusNew && res.Score > 0 {
			status = model.StatusScored
		}
		if err := st.UpdateScore(ctx, lead.ID, res.Score, res.Reason, status); err != nil {
			log.Warn("persisting score failed",
				zap.String("lead_id", lead.ID), zap.Error(err))
			sum.Errors++
			continue
		}
		sum.Scored++
		switch rules.Band(res.Score) {
		case "hot":
			sum.Hot++
		case "warm":
			sum.Warm++
		}
		log.Debug("lead scored",
			zap.String("lead_id", lead.ID),
			zap.Int("score", res.Score),
			zap.String("reason", res.Reason))
	}
	log.Info("scoring pass complete",
		zap.Int("scored", sum.Scored),
		zap.Int("hot", sum.Hot),
		zap.Int("warm", sum.Warm),
		zap.Int("errors", sum.Errors))
	return sum, nil
}
