package runner

import (
	"context"

	"go.uber.org/zap"

	"github.com/AndreyAkinshin/suiterun/internal/metrics"
	"github.com/AndreyAkinshin/suiterun/internal/model"
)

// Retrier re-runs individual failing tests until they pass or the attempt
// budget is spent. Attempts are counted, not timed; there is no backoff.
type Retrier struct {
	invoker     *Invoker
	maxAttempts int
	log         *zap.Logger
	metrics     *metrics.Recorder
}

// Recover runs testName alone up to maxAttempts times, appending every
// attempt to logPath, and stops at the first attempt that exits with 0.
// An attempt whose process cannot be started counts as failed.
//
// The returned outcome always satisfies AttemptsMade <= maxAttempts, and
// Resolved implies the last attempt passed. A non-nil error means recovery
// stopped early because the context was canceled or the log could not be
// written.
func (r *Retrier) Recover(ctx context.Context, suite, executable, testName, logPath string) (model.RetryOutcome, error) {
	outcome := model.RetryOutcome{TestName: testName}
	log := r.log.With(zap.String("suite", suite), zap.String("test", testName))

	var err error
	for outcome.AttemptsMade < r.maxAttempts {
		if err = ctx.Err(); err != nil {
			break
		}

		var out Outcome
		out, err = r.invoker.RunOne(ctx, Request{
			Suite:      suite,
			Executable: executable,
			Filter:     testName,
			LogPath:    logPath,
			Append:     true,
			Kind:       metrics.KindRetry,
		})
		outcome.AttemptsMade++
		r.metrics.RetryAttempt(suite)
		if err != nil {
			break
		}

		if out.Passed() {
			outcome.Resolved = true
			break
		}
		log.Debug("retry attempt failed",
			zap.Int("attempt", outcome.AttemptsMade),
			zap.Int("max_attempts", r.maxAttempts))
	}

	r.metrics.Retry(suite, outcome.Resolved)
	if outcome.Resolved {
		log.Info("flaky test passed on retry", zap.Int("attempts", outcome.AttemptsMade))
	} else if err == nil {
		log.Warn("test still failing after retries", zap.Int("attempts", outcome.AttemptsMade))
	}
	return outcome, err
}
