// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// poller.go implements the bounded-retry polling loop shared by the
// submit-and-poll providers. The loop is a single reusable combinator
// parameterized by attempt limit, fixed delay and a status fetcher, so the
// per-adapter code only decodes its own wire format.
package imagegen

import (
	"context"
	"fmt"
	"time"
)

// TaskStatus is the normalized status of an asynchronous remote task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
	TaskCanceled  TaskStatus = "canceled"
	TaskUnknown   TaskStatus = "unknown"
)

// Terminal reports whether the status ends the polling loop.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskSucceeded, TaskFailed, TaskCanceled:
		return true
	}
	return false
}

// TaskSnapshot is one observed state of a remote task.
type TaskSnapshot struct {
	Status TaskStatus

	// Message carries the provider's failure message for terminal
	// failure states.
	Message string

	// Result is the decoded image reference; set only on TaskSucceeded.
	Result string
}

// PollConfig bounds a fixed-interval polling loop. Intervals are fixed by
// contract with the upstream behavior; this is deliberately not exponential
// backoff.
type PollConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPollConfig matches the slower submit-and-poll providers:
// 60 attempts spaced 2 seconds apart (2 minutes worst case).
func DefaultPollConfig() PollConfig {
	return PollConfig{MaxAttempts: 60, Interval: 2 * time.Second}
}

// DefaultStreamConfig matches the space-hosted event stream:
// 60 attempts spaced 1 second apart.
func DefaultStreamConfig() PollConfig {
	return PollConfig{MaxAttempts: 60, Interval: 1 * time.Second}
}

// PollTask runs the bounded polling loop for a submitted task.
//
// Each attempt calls fetch once. A fetch-level error is tolerated (usually a
// transient network hiccup) and the loop continues with the next attempt.
// A terminal success returns the decoded result; terminal failure or cancel
// fails immediately with the provider's message; exhausting the attempt
// budget yields a Timeout error. Attempts are strictly ordered and separated
// by the fixed interval, and the delay is cancellable through ctx so an
// abandoned call does not keep polling in the background.
func PollTask(ctx context.Context, provider ProviderID, cfg PollConfig, fetch func(context.Context) (TaskSnapshot, error)) (string, error) {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultPollConfig()
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, cfg.Interval); err != nil {
				return "", err
			}
		}

		snap, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// Transient fetch failure: skip this attempt.
			continue
		}

		switch snap.Status {
		case TaskSucceeded:
			if snap.Result == "" {
				return "", errMalformedResponse(provider, "task succeeded but no image reference in result")
			}
			return snap.Result, nil
		case TaskFailed, TaskCanceled:
			return "", errRemoteTaskFailed(provider, snap.Message)
		}
		// pending/running/unknown: keep polling
	}

	return "", errTimeout(provider, fmt.Sprintf("task did not reach a terminal status within %d attempts", cfg.MaxAttempts))
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
