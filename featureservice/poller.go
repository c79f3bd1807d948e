package featureservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/akochman/ArcREST/models"
)

// errJobRunning drives the retry loop; it never escapes this file.
var errJobRunning = errors.New("job still running")

// waitForJob polls the status resource named by an async job response until
// the job reaches a terminal state. Both terminal states stop the poll: a
// failed job's payload is returned as data, not as an error, so the caller
// can inspect the server's diagnostics.
func (s *FeatureService) waitForJob(ctx context.Context, job models.Record) (models.Record, error) {
	jobURL := job.Str("statusUrl")
	if jobURL == "" {
		return nil, ErrMissingStatusURL
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.poll.InitialInterval
	policy.MaxInterval = s.poll.MaxInterval
	policy.Multiplier = s.poll.Multiplier
	policy.MaxElapsedTime = s.poll.MaxElapsedTime

	var last models.Record
	poll := func() error {
		status, err := s.ReplicaStatus(ctx, jobURL)
		if err != nil {
			// Transport failures are not retried; the connection already
			// applies its own retry budget.
			return backoff.Permanent(err)
		}
		last = status

		state := strings.ToLower(status.Str("status"))
		switch state {
		case models.JobStatusCompleted:
			return nil
		case models.JobStatusFailed:
			s.log.Warn().Str("jobUrl", jobURL).Msg("replica job failed")
			return nil
		default:
			s.log.Debug().Str("jobUrl", jobURL).Str("status", state).Msg("replica job still running")
			return errJobRunning
		}
	}

	if err := backoff.Retry(poll, backoff.WithContext(policy, ctx)); err != nil {
		if errors.Is(err, errJobRunning) {
			return nil, fmt.Errorf("%w after %s", ErrPollTimeout, s.poll.MaxElapsedTime)
		}
		return nil, err
	}
	return last, nil
}
