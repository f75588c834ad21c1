package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// IntegrityGauge publishes the number of unbalanced journals found.
type IntegrityGauge interface {
	SetUnbalancedJournals(n int)
}

// UnbalancedJournal identifies a journal whose lines do not net to zero.
type UnbalancedJournal struct {
	JournalID  int64
	BusinessID int64
	Number     string
	Difference float64
}

// IntegrityChecker scans posted journals for balance drift. Posting enforces
// balance up front, so any hit here means rows were mutated outside the
// engine.
type IntegrityChecker struct {
	q      db.DBTX
	logger *slog.Logger
	gauge  IntegrityGauge
}

func NewIntegrityChecker(q db.DBTX, logger *slog.Logger, gauge IntegrityGauge) *IntegrityChecker {
	return &IntegrityChecker{q: q, logger: logger, gauge: gauge}
}

// Scan returns every journal whose debit and credit totals differ by more
// than the posting tolerance.
func (c *IntegrityChecker) Scan(ctx context.Context, businessID int64) ([]UnbalancedJournal, error) {
	const query = `
		SELECT je.id, je.business_id, je.journal_number,
		       ROUND(SUM(ge.debit)::numeric - SUM(ge.credit)::numeric, 2) AS diff
		FROM journal_entries je
		JOIN gl_entries ge ON ge.journal_id = je.id
		WHERE ($1 = 0 OR je.business_id = $1)
		GROUP BY je.id, je.business_id, je.journal_number
		HAVING ABS(SUM(ge.debit) - SUM(ge.credit)) > $2
		ORDER BY je.id`
	rows, err := c.q.Query(ctx, query, businessID, shared.BalanceTolerance)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UnbalancedJournal
	for rows.Next() {
		var u UnbalancedJournal
		if err := rows.Scan(&u.JournalID, &u.BusinessID, &u.Number, &u.Difference); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Handle processes TaskGLIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload GLIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	offenders, err := c.Scan(ctx, payload.BusinessID)
	if err != nil {
		c.logger.Error("gl integrity scan failed", slog.Any("error", err))
		return err
	}
	for _, u := range offenders {
		c.logger.Error("unbalanced journal detected",
			slog.Int64("journal_id", u.JournalID),
			slog.Int64("business_id", u.BusinessID),
			slog.String("number", u.Number),
			slog.Float64("difference", u.Difference))
	}
	if c.gauge != nil {
		c.gauge.SetUnbalancedJournals(len(offenders))
	}
	c.logger.Info("gl integrity scan completed",
		slog.Int("unbalanced", len(offenders)),
		slog.Int64("business_id", payload.BusinessID))
	return nil
}
