// Package scan runs scanner events through extraction, decoding and
// persistence.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/WessleyAI/wessley-vin/engine/domain"
	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/fn"
	"github.com/WessleyAI/wessley-vin/pkg/metrics"
	"github.com/WessleyAI/wessley-vin/pkg/vinscan"
)

// Scan outcomes recorded in metrics.
const (
	OutcomeDecoded  = "decoded"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Store persists decoded vehicles. *graph.GraphStore implements it.
type Store interface {
	SaveVehicle(ctx context.Context, r vin.Result) error
}

// Deps holds the external dependencies for the scan pipeline. Every field is
// optional.
type Deps struct {
	Store   Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// Options apply to every decode.
	Options []vin.Option
	// Retry governs persistence attempts. The zero value means fn.DefaultRetry.
	Retry fn.RetryOpts
	Now   func() time.Time
}

// extracted carries a scan through the pipeline once a VIN has been picked.
type extracted struct {
	Event domain.ScanEvent
	VIN   string
	Found bool
}

// Processor turns ScanEvents into DecodeEvents.
type Processor struct {
	deps     Deps
	log      *slog.Logger
	pipeline fn.Stage[domain.ScanEvent, domain.DecodeEvent]
}

// NewProcessor wires the traced validate → extract → decode → persist pipeline.
func NewProcessor(deps Deps) *Processor {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Retry.MaxAttempts == 0 {
		deps.Retry = fn.DefaultRetry
	}
	p := &Processor{deps: deps, log: deps.Logger}

	validated := fn.TracedStage("scan.validate", fn.Then(loggedTap[domain.ScanEvent]("validate", p.log), validate))
	withVIN := fn.Then(validated, fn.TracedStage("scan.extract", fn.Then(loggedTap[domain.ScanEvent]("extract", p.log), extract)))
	decoded := fn.Then(withVIN, fn.TracedStage("scan.decode", fn.Then(loggedTap[extracted]("decode", p.log), p.decode)))
	p.pipeline = fn.Then(decoded, fn.TracedStage("scan.persist", fn.Then(loggedTap[domain.DecodeEvent]("persist", p.log), p.persist)))
	return p
}

// Process runs one event through the pipeline. A VIN that fails to decode is
// not a pipeline error: it yields a DecodeEvent with Error and Code set. The
// result is an error only for invalid events and persistence failures.
func (p *Processor) Process(ctx context.Context, e domain.ScanEvent) fn.Result[domain.DecodeEvent] {
	result := p.pipeline(ctx, e)
	outcome := OutcomeFailed
	if ev, err := result.Unwrap(); err == nil {
		outcome = OutcomeRejected
		if ev.OK() {
			outcome = OutcomeDecoded
		}
	} else {
		p.log.Warn("scan: pipeline failed", "scan_id", e.ID, "source", e.Source, "error", err)
	}
	p.deps.Metrics.ObserveScan(string(e.Source), outcome)
	return result
}

// loggedTap returns a stage that logs entry/exit with duration.
func loggedTap[T any](name string, log *slog.Logger) fn.Stage[T, T] {
	return func(ctx context.Context, t T) fn.Result[T] {
		log.Debug("stage.enter", "stage", name)
		start := time.Now()
		defer func() {
			log.Debug("stage.exit", "stage", name, "duration", time.Since(start))
		}()
		return fn.Ok(t)
	}
}

// validate checks a ScanEvent via domain validation.
var validate fn.Stage[domain.ScanEvent, domain.ScanEvent] = func(_ context.Context, e domain.ScanEvent) fn.Result[domain.ScanEvent] {
	if err := domain.ValidateScanEvent(e); err != nil {
		return fn.Err[domain.ScanEvent](err)
	}
	return fn.Ok(e)
}

// extract picks the best VIN candidate. Without one the raw text is decoded
// as-is so the caller still gets a structural error code.
var extract fn.Stage[domain.ScanEvent, extracted] = func(_ context.Context, e domain.ScanEvent) fn.Result[extracted] {
	if v, ok := vinscan.Best(e.Raw); ok {
		return fn.Ok(extracted{Event: e, VIN: v, Found: true})
	}
	return fn.Ok(extracted{Event: e, VIN: e.Raw})
}

func (p *Processor) decode(_ context.Context, x extracted) fn.Result[domain.DecodeEvent] {
	start := time.Now()
	ev := domain.DecodeEvent{ScanID: x.Event.ID, Source: x.Event.Source, DecodedAt: p.deps.Now().UTC()}

	r, err := vin.Decode(x.VIN, p.deps.Options...)
	if err != nil {
		ev.Error = err.Error()
		ev.Code = vin.CodeOf(err)
		if x.Found {
			ev.VIN = vin.Normalize(x.VIN)
		}
		var verdict string
		if ev.Code == vin.CodeCheckDigit {
			verdict = "invalid"
		}
		p.deps.Metrics.ObserveDecode(string(ev.Code), verdict, time.Since(start))
		return fn.Ok(ev)
	}

	ev.VIN = r.VIN
	ev.Result = &r
	p.deps.Metrics.ObserveDecode("ok", VerdictOf(r.CheckDigit), time.Since(start))
	return fn.Ok(ev)
}

func (p *Processor) persist(ctx context.Context, ev domain.DecodeEvent) fn.Result[domain.DecodeEvent] {
	if p.deps.Store == nil || !ev.OK() {
		return fn.Ok(ev)
	}
	r := *ev.Result
	saved := fn.Retry(ctx, p.deps.Retry, func(ctx context.Context) fn.Result[struct{}] {
		if err := p.deps.Store.SaveVehicle(ctx, r); err != nil {
			return fn.Err[struct{}](err)
		}
		return fn.Ok(struct{}{})
	})
	if saved.IsErr() {
		return fn.Err[domain.DecodeEvent](fmt.Errorf("persist %s: %w", r.VIN, saved.Error()))
	}
	return fn.Ok(ev)
}

// VerdictOf labels a check digit for metrics.
func VerdictOf(cd vin.CheckDigit) string {
	switch {
	case cd.Valid && cd.Reason == "":
		return "valid"
	case cd.Reason == vin.ReasonNotEnforced:
		return "not_enforced"
	case cd.Reason == vin.ReasonNotComputable:
		return "not_computable"
	default:
		return "invalid"
	}
}

// IsInvalidEvent reports whether err came from event validation rather than
// persistence.
func IsInvalidEvent(err error) bool {
	return errors.Is(err, domain.ErrInvalidScan)
}
