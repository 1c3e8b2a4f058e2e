package io

import (
	"context"

	"github.com/wippyai/virtfs/wasi/preview2"
)

// PollHost serves wasi:io/poll. Handles that are missing or not pollable
// are never ready.
type PollHost struct {
	resources *preview2.ResourceTable
}

func NewPollHost(resources *preview2.ResourceTable) *PollHost {
	return &PollHost{resources: resources}
}

func (h *PollHost) Namespace() string {
	return "wasi:io/poll@0.2.8"
}

func (h *PollHost) pollable(handle uint32) (preview2.Pollable, bool) {
	r, ok := h.resources.Get(handle)
	if !ok {
		return nil, false
	}
	p, ok := r.(preview2.Pollable)
	return p, ok
}

// Poll returns the indices of the ready pollables. When none is ready it
// blocks on the first valid one and checks again, so a non-empty result is
// returned unless ctx ends first or no handle is valid.
func (h *PollHost) Poll(ctx context.Context, pollables []uint32) []uint32 {
	list := make([]preview2.Pollable, len(pollables))
	var first preview2.Pollable
	for i, handle := range pollables {
		if p, ok := h.pollable(handle); ok {
			list[i] = p
			if first == nil {
				first = p
			}
		}
	}

	ready := readyIndices(list)
	if len(ready) > 0 || first == nil || ctx.Err() != nil {
		return ready
	}
	first.Block(ctx)
	return readyIndices(list)
}

func readyIndices(list []preview2.Pollable) []uint32 {
	ready := make([]uint32, 0, len(list))
	for i, p := range list {
		if p != nil && p.Ready() {
			ready = append(ready, uint32(i))
		}
	}
	return ready
}

func (h *PollHost) MethodPollableReady(_ context.Context, self uint32) bool {
	p, ok := h.pollable(self)
	return ok && p.Ready()
}

func (h *PollHost) MethodPollableBlock(ctx context.Context, self uint32) {
	if p, ok := h.pollable(self); ok {
		p.Block(ctx)
	}
}

func (h *PollHost) ResourceDropPollable(_ context.Context, self uint32) {
	h.resources.Remove(self)
}

func (h *PollHost) Register() map[string]any {
	return map[string]any{
		"poll":                    h.Poll,
		"[method]pollable.ready":  h.MethodPollableReady,
		"[method]pollable.block":  h.MethodPollableBlock,
		"[resource-drop]pollable": h.ResourceDropPollable,
	}
}
