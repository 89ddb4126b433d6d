package accounts

import (
	"context"
	"time"

	internalaudit "github.com/wasiakbar8/smartstudy-accounts/internal/audit"
)

// Engine coordinates the account lifecycle flows against the two external
// collaborators. Engine methods are safe to call from multiple goroutines
// after initialization through [Builder.Build].
type Engine struct {
	config Config

	identity IdentityProvider
	profiles ProfileStore

	audit   *internalaudit.Dispatcher
	metrics *Metrics

	now func() time.Time
}

// Close drains the audit dispatcher. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time deep copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// forceSignOut tears down the provider-side session for account. It runs on a
// non-cancellable context: the caller abandoning interest must not leave an
// unverified session admitted.
func (e *Engine) forceSignOut(ctx context.Context, account *Account) {
	ctx = context.WithoutCancel(ctx)

	if err := e.identity.SignOut(ctx, account); err != nil {
		e.emitAudit(ctx, auditEventForcedSignOutFailure, false, account.ID, account.Email, err, nil)
		return
	}
	e.metricInc(MetricForcedSignOut)
	e.emitAudit(ctx, auditEventForcedSignOut, true, account.ID, account.Email, nil, nil)
}

func (e *Engine) ready() error {
	if e == nil || e.identity == nil || e.profiles == nil {
		return ErrEngineNotReady
	}
	return nil
}
