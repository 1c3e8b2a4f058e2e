package io

import (
	"context"
	"errors"

	"github.com/wippyai/virtfs/wasi/preview2"
)

type reader interface {
	Read(length uint64) ([]byte, error)
}

type writer interface {
	Write(data []byte) error
}

type StreamsHost struct {
	resources *preview2.ResourceTable
}

func NewStreamsHost(resources *preview2.ResourceTable) *StreamsHost {
	return &StreamsHost{resources: resources}
}

func (h *StreamsHost) Namespace() string {
	return "wasi:io/streams@0.2.8"
}

// streamError converts err to a StreamError. A failed operation gets an error
// resource so the guest can ask for its description.
func (h *StreamsHost) streamError(err error) *preview2.StreamError {
	var se *preview2.StreamError
	if !errors.As(err, &se) {
		se = &preview2.StreamError{LastOpFailed: true, Cause: err}
	}
	if se.LastOpFailed && se.LastOpFailedErr == 0 {
		se.LastOpFailedErr = h.resources.Add(preview2.NewErrorResource(se.Cause))
	}
	return se
}

func (h *StreamsHost) input(self uint32) (reader, *preview2.StreamError) {
	r, ok := h.resources.Get(self)
	if !ok {
		return nil, &preview2.StreamError{Closed: true}
	}
	stream, ok := r.(reader)
	if !ok {
		return nil, &preview2.StreamError{Closed: true}
	}
	return stream, nil
}

func (h *StreamsHost) output(self uint32) (writer, *preview2.StreamError) {
	r, ok := h.resources.Get(self)
	if !ok {
		return nil, &preview2.StreamError{Closed: true}
	}
	stream, ok := r.(writer)
	if !ok {
		return nil, &preview2.StreamError{Closed: true}
	}
	return stream, nil
}

func (h *StreamsHost) MethodInputStreamRead(_ context.Context, self uint32, length uint64) ([]byte, *preview2.StreamError) {
	stream, serr := h.input(self)
	if serr != nil {
		return nil, serr
	}
	data, err := stream.Read(length)
	if err != nil {
		return nil, h.streamError(err)
	}
	return data, nil
}

func (h *StreamsHost) MethodInputStreamBlockingRead(ctx context.Context, self uint32, length uint64) ([]byte, *preview2.StreamError) {
	return h.MethodInputStreamRead(ctx, self, length)
}

func (h *StreamsHost) MethodInputStreamSkip(ctx context.Context, self uint32, length uint64) (uint64, *preview2.StreamError) {
	data, serr := h.MethodInputStreamRead(ctx, self, length)
	if serr != nil {
		return 0, serr
	}
	return uint64(len(data)), nil
}

func (h *StreamsHost) MethodInputStreamBlockingSkip(ctx context.Context, self uint32, length uint64) (uint64, *preview2.StreamError) {
	return h.MethodInputStreamSkip(ctx, self, length)
}

func (h *StreamsHost) MethodInputStreamSubscribe(_ context.Context, self uint32) uint32 {
	pollable := &preview2.PollableResource{}
	pollable.SetReady(true)
	return h.resources.AddChild(pollable, self)
}

func (h *StreamsHost) MethodOutputStreamCheckWrite(_ context.Context, self uint32) (uint64, *preview2.StreamError) {
	r, ok := h.resources.Get(self)
	if !ok {
		return 0, &preview2.StreamError{Closed: true}
	}

	stream, ok := r.(interface{ CheckWrite() (uint64, error) })
	if !ok {
		return preview2.DefaultBufferSize, nil
	}

	size, err := stream.CheckWrite()
	if err != nil {
		return 0, h.streamError(err)
	}
	return size, nil
}

func (h *StreamsHost) MethodOutputStreamWrite(_ context.Context, self uint32, contents []byte) *preview2.StreamError {
	stream, serr := h.output(self)
	if serr != nil {
		return serr
	}
	if err := stream.Write(contents); err != nil {
		return h.streamError(err)
	}
	return nil
}

func (h *StreamsHost) MethodOutputStreamBlockingWriteAndFlush(ctx context.Context, self uint32, contents []byte) *preview2.StreamError {
	if serr := h.MethodOutputStreamWrite(ctx, self, contents); serr != nil {
		return serr
	}
	return h.MethodOutputStreamFlush(ctx, self)
}

func (h *StreamsHost) MethodOutputStreamFlush(_ context.Context, self uint32) *preview2.StreamError {
	r, ok := h.resources.Get(self)
	if !ok {
		return &preview2.StreamError{Closed: true}
	}

	if flusher, ok := r.(interface{ Flush() error }); ok {
		if err := flusher.Flush(); err != nil {
			return h.streamError(err)
		}
	}
	return nil
}

func (h *StreamsHost) MethodOutputStreamBlockingFlush(ctx context.Context, self uint32) *preview2.StreamError {
	return h.MethodOutputStreamFlush(ctx, self)
}

func (h *StreamsHost) MethodOutputStreamSubscribe(_ context.Context, self uint32) uint32 {
	pollable := &preview2.PollableResource{}
	pollable.SetReady(true)
	return h.resources.AddChild(pollable, self)
}

func (h *StreamsHost) MethodOutputStreamWriteZeroes(ctx context.Context, self uint32, length uint64) *preview2.StreamError {
	// Limit allocation to prevent DoS
	if length > preview2.MaxAllocationSize {
		return h.streamError(errors.New("write-zeroes length exceeds the allocation limit"))
	}
	return h.MethodOutputStreamWrite(ctx, self, make([]byte, length))
}

func (h *StreamsHost) MethodOutputStreamBlockingWriteZeroesAndFlush(ctx context.Context, self uint32, length uint64) *preview2.StreamError {
	if serr := h.MethodOutputStreamWriteZeroes(ctx, self, length); serr != nil {
		return serr
	}
	return h.MethodOutputStreamFlush(ctx, self)
}

func (h *StreamsHost) MethodOutputStreamSplice(_ context.Context, self uint32, src uint32, length uint64) (uint64, *preview2.StreamError) {
	srcStream, serr := h.input(src)
	if serr != nil {
		return 0, serr
	}
	dstStream, serr := h.output(self)
	if serr != nil {
		return 0, serr
	}

	data, err := srcStream.Read(length)
	if err != nil {
		return 0, h.streamError(err)
	}
	if err := dstStream.Write(data); err != nil {
		return 0, h.streamError(err)
	}
	return uint64(len(data)), nil
}

func (h *StreamsHost) MethodOutputStreamBlockingSplice(ctx context.Context, self uint32, src uint32, length uint64) (uint64, *preview2.StreamError) {
	return h.MethodOutputStreamSplice(ctx, self, src, length)
}

func (h *StreamsHost) ResourceDropInputStream(_ context.Context, self uint32) {
	h.resources.Remove(self)
}

func (h *StreamsHost) ResourceDropOutputStream(_ context.Context, self uint32) {
	h.resources.Remove(self)
}

func (h *StreamsHost) Register() map[string]any {
	return map[string]any{
		"[method]input-stream.read":          h.MethodInputStreamRead,
		"[method]input-stream.blocking-read": h.MethodInputStreamBlockingRead,
		"[method]input-stream.skip":          h.MethodInputStreamSkip,
		"[method]input-stream.blocking-skip": h.MethodInputStreamBlockingSkip,
		"[method]input-stream.subscribe":     h.MethodInputStreamSubscribe,
		// Output stream methods
		"[method]output-stream.check-write":                     h.MethodOutputStreamCheckWrite,
		"[method]output-stream.write":                           h.MethodOutputStreamWrite,
		"[method]output-stream.blocking-write-and-flush":        h.MethodOutputStreamBlockingWriteAndFlush,
		"[method]output-stream.flush":                           h.MethodOutputStreamFlush,
		"[method]output-stream.blocking-flush":                  h.MethodOutputStreamBlockingFlush,
		"[method]output-stream.subscribe":                       h.MethodOutputStreamSubscribe,
		"[method]output-stream.write-zeroes":                    h.MethodOutputStreamWriteZeroes,
		"[method]output-stream.blocking-write-zeroes-and-flush": h.MethodOutputStreamBlockingWriteZeroesAndFlush,
		"[method]output-stream.splice":                          h.MethodOutputStreamSplice,
		"[method]output-stream.blocking-splice":                 h.MethodOutputStreamBlockingSplice,
		// Resource destructors
		"[resource-drop]input-stream":  h.ResourceDropInputStream,
		"[resource-drop]output-stream": h.ResourceDropOutputStream,
	}
}
