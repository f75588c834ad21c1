package periods

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// Guard gates whether a posting date may receive new journal entries.
type Guard struct {
	logger *slog.Logger
}

func NewGuard(logger *slog.Logger) *Guard {
	return &Guard{logger: logger}
}

// CheckPostingAllowed permits the posting when the covering period is open.
// A date with no covering period posts unrestricted; that default is a
// product-level policy, so the guard logs it for operator visibility.
func (g *Guard) CheckPostingAllowed(ctx context.Context, q db.DBTX, businessID int64, date time.Time) error {
	period, err := findByDate(ctx, q, businessID, date)
	if err != nil {
		if errors.Is(err, ErrNoPeriod) {
			if g.logger != nil {
				g.logger.Warn("posting to date without fiscal period",
					slog.Int64("business_id", businessID),
					slog.Time("date", date))
			}
			return nil
		}
		return err
	}
	if period.Status != PeriodStatusOpen {
		return shared.PeriodClosedError{PeriodName: period.Name, Status: string(period.Status)}
	}
	return nil
}
