package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"stitchstock/internal/domain/production"
	"stitchstock/pkg/numerator"
)

// txQuerier routes numerator queries through the active transaction, so
// number assignment shares the atomic unit of the operation that needs it.
type txQuerier struct {
	txm *TxManager
}

func (q txQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
}

// LogNumberer assigns PL-YYYY-XXXXX numbers to production logs.
type LogNumberer struct {
	svc *numerator.Service
	cfg numerator.Config
}

var _ production.NumberGenerator = (*LogNumberer)(nil)

func NewLogNumberer(txm *TxManager) *LogNumberer {
	return &LogNumberer{
		svc: numerator.New(txQuerier{txm: txm}),
		cfg: numerator.DefaultConfig("PL"),
	}
}

func (n *LogNumberer) NextLogNumber(ctx context.Context, period time.Time) (string, error) {
	return n.svc.GetNextNumber(ctx, n.cfg, numerator.DefaultOptions(), period)
}
