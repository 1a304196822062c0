// Package notify carries fire-and-forget toast messages from the form and
// page controllers to whoever renders them.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Position is a display hint for the renderer.
type Position string

const (
	BottomCenter Position = "bottom-center"
	TopCenter    Position = "top-center"
)

type Notification struct {
	Level    Level    `json:"level"`
	Message  string   `json:"message"`
	Position Position `json:"position"`
}

// Sink accepts notifications. Delivery is not confirmed.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

func Success(ctx context.Context, sink Sink, message string, pos Position) {
	sink.Notify(ctx, Notification{Level: LevelSuccess, Message: message, Position: pos})
}

func Error(ctx context.Context, sink Sink, message string, pos Position) {
	sink.Notify(ctx, Notification{Level: LevelError, Message: message, Position: pos})
}

// Collector buffers the notifications raised while serving one request.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

func (c *Collector) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

// Drain returns and clears everything collected so far.
func (c *Collector) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.items
	c.items = nil
	return out
}

type collectorKey struct{}

// WithCollector attaches a fresh Collector to ctx.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func CollectorFrom(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok
}

// RequestSink logs every notification and hands it to the request's
// Collector when there is one.
type RequestSink struct {
	log *zap.Logger
}

func NewRequestSink(log *zap.Logger) *RequestSink {
	return &RequestSink{log: log.With(zap.String("component", "notify"))}
}

func (s *RequestSink) Notify(ctx context.Context, n Notification) {
	if n.Position == "" {
		n.Position = BottomCenter
	}

	s.log.Debug("Notification",
		zap.String("level", string(n.Level)),
		zap.String("message", n.Message),
		zap.String("position", string(n.Position)),
	)

	if c, ok := CollectorFrom(ctx); ok {
		c.Notify(ctx, n)
	}
}
