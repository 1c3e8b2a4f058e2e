package clocks

import (
	"context"
	"time"

	"github.com/wippyai/virtfs/vfs"
	"github.com/wippyai/virtfs/wasi/preview2"
)

type MonotonicClockHost struct {
	resources *preview2.ResourceTable
	clock     vfs.Clock
	startTime time.Time
}

func NewMonotonicClockHost(resources *preview2.ResourceTable, clock vfs.Clock) *MonotonicClockHost {
	return &MonotonicClockHost{
		resources: resources,
		clock:     clock,
		startTime: clock.Now(0),
	}
}

func (h *MonotonicClockHost) Namespace() string {
	return "wasi:clocks/monotonic-clock@0.2.8"
}

func (h *MonotonicClockHost) Now(_ context.Context) uint64 {
	elapsed := h.clock.Now(0).Sub(h.startTime)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed.Nanoseconds())
}

func (h *MonotonicClockHost) Resolution(_ context.Context) uint64 {
	return 1
}

func (h *MonotonicClockHost) SubscribeInstant(_ context.Context, when uint64) uint32 {
	deadline := h.startTime.Add(time.Duration(when))
	return h.resources.Add(preview2.NewTimerPollable(h.clock, deadline))
}

func (h *MonotonicClockHost) SubscribeDuration(_ context.Context, duration uint64) uint32 {
	deadline := h.clock.Now(0).Add(time.Duration(duration))
	return h.resources.Add(preview2.NewTimerPollable(h.clock, deadline))
}

func (h *MonotonicClockHost) Register() map[string]any {
	return map[string]any{
		"now":                h.Now,
		"resolution":         h.Resolution,
		"subscribe-instant":  h.SubscribeInstant,
		"subscribe-duration": h.SubscribeDuration,
	}
}
