package validate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codewithboateng/minepack/internal/rules"
)

// slot holds the outcome of the rule at one registry position.
type slot struct {
	findings []rules.Finding
	fault    error
}

// execute evaluates every rule and returns one slot per registry position,
// so aggregation order never depends on completion order.
func execute(ctx context.Context, list []rules.Rule, rctx rules.Context, jobs int, log *slog.Logger) ([]slot, error) {
	slots := make([]slot, len(list))

	if jobs <= 1 || len(list) < 2 {
		for i, r := range list {
			if err := ctx.Err(); err != nil {
				return slots, err
			}
			slots[i] = runRule(r, rctx, log)
		}
		return slots, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(list)))
	for i, r := range list {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each goroutine owns slots[i]
			slots[i] = runRule(r, rctx, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return slots, err
	}
	return slots, nil
}

func runRule(r rules.Rule, rctx rules.Context, log *slog.Logger) slot {
	start := time.Now()
	findings, err := applyRule(r, rctx)
	elapsed := time.Since(start)
	if err != nil {
		log.Warn("rule faulted", "rule", r.Key, "err", err, "elapsed", elapsed)
		return slot{fault: err}
	}
	log.Debug("rule done", "rule", r.Key, "findings", len(findings), "elapsed", elapsed)
	return slot{findings: findings}
}

// applyRule calls r.Apply and converts a panic into an error.
func applyRule(r rules.Rule, rctx rules.Context) (findings []rules.Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			findings = nil
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	findings, err = r.Apply(rctx)
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// faultMessage is the single finding recorded for a faulted rule. The
// stack trace of a panic goes to the log only.
func faultMessage(err error) string {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return "rule faulted: " + msg
}
