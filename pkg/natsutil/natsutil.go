// Package natsutil provides typed NATS publish/subscribe/request helpers
// with OpenTelemetry trace propagation.
package natsutil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// DropFunc is told about messages that could not be decoded.
type DropFunc func(subject string, err error)

// encode builds a JSON message for subject with trace context from ctx.
func encode[T any](ctx context.Context, subject string, v T) (*nats.Msg, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return msg, nil
}

// decode unmarshals msg into T and extracts its trace context.
func decode[T any](msg *nats.Msg) (context.Context, T, error) {
	var v T
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		return nil, v, err
	}
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
	return ctx, v, nil
}

// Publish serializes v as JSON and publishes to the given subject.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	msg, err := encode(ctx, subject, v)
	if err != nil {
		return err
	}
	return nc.PublishMsg(msg)
}

// Subscribe registers a handler that deserializes JSON messages of type T.
// Malformed messages are reported to drop (when non-nil) and skipped.
func Subscribe[T any](nc *nats.Conn, subject string, handler func(context.Context, T), drop DropFunc) (*nats.Subscription, error) {
	return nc.Subscribe(subject, messageHandler(handler, drop))
}

// QueueSubscribe is Subscribe within a queue group, so each message reaches
// one member of the group.
func QueueSubscribe[T any](nc *nats.Conn, subject, queue string, handler func(context.Context, T), drop DropFunc) (*nats.Subscription, error) {
	return nc.QueueSubscribe(subject, queue, messageHandler(handler, drop))
}

func messageHandler[T any](handler func(context.Context, T), drop DropFunc) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, v, err := decode[T](msg)
		if err != nil {
			if drop != nil {
				drop(msg.Subject, err)
			}
			return
		}
		handler(ctx, v)
	}
}

// Reply answers request/reply traffic on subject within queue. Requests that
// fail to decode are reported to drop and left unanswered, so the requester
// times out.
func Reply[Req, Resp any](nc *nats.Conn, subject, queue string, handler func(context.Context, Req) Resp, drop DropFunc) (*nats.Subscription, error) {
	return nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		ctx, req, err := decode[Req](msg)
		if err != nil {
			if drop != nil {
				drop(msg.Subject, err)
			}
			return
		}
		out, err := encode(ctx, msg.Reply, handler(ctx, req))
		if err != nil {
			if drop != nil {
				drop(msg.Subject, err)
			}
			return
		}
		msg.RespondMsg(out)
	})
}

// Request sends a JSON-encoded request and decodes the response. A
// non-positive timeout falls back to nats.DefaultTimeout.
func Request[Req, Resp any](ctx context.Context, nc *nats.Conn, subject string, req Req, timeout time.Duration) (Resp, error) {
	var zero Resp
	if timeout <= 0 {
		timeout = nats.DefaultTimeout
	}
	msg, err := encode(ctx, subject, req)
	if err != nil {
		return zero, err
	}
	resp, err := nc.RequestMsg(msg, timeout)
	if err != nil {
		return zero, err
	}
	var result Resp
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return zero, err
	}
	return result, nil
}
