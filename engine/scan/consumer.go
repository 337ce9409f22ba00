package scan

import (
	"context"
	"log/slog"
	"strings"

	"github.com/WessleyAI/wessley-vin/engine/domain"
	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/natsutil"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	// ScannedSubject carries incoming ScanEvents.
	ScannedSubject = "vin.scanned"
	// DecodedSubject carries the DecodeEvent for every processed scan.
	DecodedSubject = "vin.decoded"
	// DecodeSubject answers DecodeRequests over request/reply.
	DecodeSubject = "vin.decode"
	// DLQSubject receives scans the pipeline could not process.
	DLQSubject = "vin.scanned.dlq"
	// QueueGroup load-balances workers.
	QueueGroup = "vin-workers"
)

// DecodeRequest is the request/reply payload on DecodeSubject.
type DecodeRequest struct {
	VIN    string            `json:"vin"`
	Source domain.ScanSource `json:"source,omitempty"`
}

// dlqMessage is published to the DLQ when the pipeline fails.
type dlqMessage struct {
	Event domain.ScanEvent `json:"event"`
	Error string           `json:"error"`
}

// StartConsumer queue-subscribes to ScannedSubject, processes every event and
// publishes the outcome to DecodedSubject, or to DLQSubject on failure.
func StartConsumer(nc *nats.Conn, p *Processor, log *slog.Logger) (*nats.Subscription, error) {
	if log == nil {
		log = slog.Default()
	}
	return natsutil.QueueSubscribe(nc, ScannedSubject, QueueGroup, func(ctx context.Context, e domain.ScanEvent) {
		ev, err := p.Process(ctx, e).Unwrap()
		if err != nil {
			if perr := natsutil.Publish(ctx, nc, DLQSubject, dlqMessage{Event: e, Error: err.Error()}); perr != nil {
				log.Error("scan: DLQ publish failed", "error", perr, "scan_id", e.ID)
			}
			return
		}
		if err := natsutil.Publish(ctx, nc, DecodedSubject, ev); err != nil {
			log.Error("scan: publish failed", "error", err, "scan_id", e.ID)
			return
		}
		log.Info("scan: processed", "scan_id", e.ID, "vin", ev.VIN, "code", ev.Code)
	}, dropLogger(log))
}

// ServeRequests answers DecodeRequests on DecodeSubject.
func ServeRequests(nc *nats.Conn, p *Processor, log *slog.Logger) (*nats.Subscription, error) {
	if log == nil {
		log = slog.Default()
	}
	return natsutil.Reply(nc, DecodeSubject, QueueGroup, func(ctx context.Context, req DecodeRequest) domain.DecodeEvent {
		return p.Answer(ctx, req)
	}, dropLogger(log))
}

// Answer processes a DecodeRequest as an ad-hoc scan. Pipeline failures are
// folded into the event as ERR_UNKNOWN so the requester always gets a reply.
func (p *Processor) Answer(ctx context.Context, req DecodeRequest) domain.DecodeEvent {
	src := req.Source
	if src == "" {
		src = domain.SourceAPI
	}
	e := domain.ScanEvent{ID: uuid.NewString(), Source: src, Raw: req.VIN, ScannedAt: p.deps.Now().UTC()}
	if strings.TrimSpace(req.VIN) == "" {
		// Blank input never passes event validation; answer with the decoder's verdict.
		_, err := vin.Decode(req.VIN)
		return domain.DecodeEvent{ScanID: e.ID, Source: src, Error: err.Error(), Code: vin.CodeOf(err), DecodedAt: e.ScannedAt}
	}
	ev, err := p.Process(ctx, e).Unwrap()
	if err != nil {
		return domain.DecodeEvent{
			ScanID:    e.ID,
			Source:    e.Source,
			Error:     err.Error(),
			Code:      vin.CodeUnknown,
			DecodedAt: e.ScannedAt,
		}
	}
	return ev
}

func dropLogger(log *slog.Logger) natsutil.DropFunc {
	return func(subject string, err error) {
		log.Warn("scan: dropped malformed message", "subject", subject, "error", err)
	}
}
