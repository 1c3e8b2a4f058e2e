package io

import "github.com/wippyai/virtfs/wasi/preview2"

// Registrar is a host that exposes its functions by WIT name.
type Registrar interface {
	Namespace() string
	Register() map[string]any
}

// Host groups the wasi:io hosts sharing one resource table.
type Host struct {
	Error   *ErrorHost
	Poll    *PollHost
	Streams *StreamsHost
}

func NewHost(resources *preview2.ResourceTable) *Host {
	return &Host{
		Error:   NewErrorHost(resources),
		Poll:    NewPollHost(resources),
		Streams: NewStreamsHost(resources),
	}
}

// All returns the hosts in registration order.
func (h *Host) All() []Registrar {
	return []Registrar{h.Error, h.Poll, h.Streams}
}
