// Package buildkit decodes a BuildKit-enabled Docker daemon's image-build
// response stream into a CLI-style transcript and a sequence of structured
// build events, and separately provides a connectivity layer for driving
// builds directly through BuildKit's gRPC Solve API. See Decoder for the
// response decoder and NewImageBuilder for the Solve-based builder.
package buildkit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/docker/docker/pkg/jsonmessage"
)

// maxLineSize bounds a single line of the build response stream.
// moby.buildkit.trace envelopes carry a base64-encoded protobuf payload
// that can be large on builds with many vertexes or verbose logs; the
// default bufio.Scanner token limit (64KB) is too small for that.
const maxLineSize = 32 * 1024 * 1024

// Decoder is a streaming decoder for one BuildKit image-build response.
// It is a single stateful object instantiated per build and is not safe
// for concurrent use: the caller drives it with one Run call.
type Decoder struct {
	transcript *transcript
	onEvent    func(BuildEvent)
}

// NewDecoder creates a Decoder writing its transcript to out and delivering
// structured events to onEvent. onEvent may be nil to discard events.
func NewDecoder(out io.Writer, onEvent func(BuildEvent)) *Decoder {
	return &Decoder{
		transcript: newTranscript(out),
		onEvent:    onEvent,
	}
}

// flusher is implemented by output sinks that buffer writes, e.g.
// *bufio.Writer. Run flushes the sink once at end-of-stream; the sink is
// borrowed and never closed.
type flusher interface {
	Flush() error
}

// Run reads newline-delimited JSON objects from in until it observes
// end-of-stream or ctx is canceled, driving the decoder's state machine.
// It performs no internal buffering beyond one line and spawns no
// goroutines: every suspension point is a read from in or a write to the
// decoder's output sink.
func (d *Decoder) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg jsonmessage.JSONMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return &MalformedResponseError{Line: quoteLine(line), Err: err}
		}

		if err := d.handle(&msg); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("buildkit: reading response stream: %w", err)
	}

	if err := d.transcript.flushAll(); err != nil {
		return err
	}
	if f, ok := d.transcript.out.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// handle dispatches one decoded line to the appropriate decoder.
func (d *Decoder) handle(msg *jsonmessage.JSONMessage) error {
	switch classify(msg) {
	case envelopeError:
		d.emit(BuildError{Message: errorMessage(msg)})
	case envelopeImageComplete:
		id, err := decodeImageID(msg)
		if err != nil {
			return err
		}
		d.emit(BuildComplete{ImageID: id})
	case envelopeTraceMessage:
		resp, err := decodeTrace(msg)
		if err != nil {
			return err
		}
		return d.handleStatusResponse(resp)
	}
	return nil
}

// handleStatusResponse processes one decoded StatusResponse in two phases:
// transcript update, then progress update.
//
// Within the transcript update, each vertex in wire order is rendered
// together with its own logs and completed statuses, which are consumed
// from the response's residual lists as they are rendered. Vertexes is a
// full snapshot, so a response frequently pairs a transition of one vertex
// with log traffic for a different, already-known vertex; rendering each
// owner's lines before moving to the next vertex keeps the transcript from
// switching steps more often than the wire ordering requires. Whatever the
// vertex loop did not consume is rendered afterwards against its owner's
// current recorded state.
func (d *Decoder) handleStatusResponse(resp *StatusResponse) error {
	logConsumed := make([]bool, len(resp.Logs))
	statusConsumed := make([]bool, len(resp.Statuses))

	for _, v := range resp.Vertexes {
		if err := d.transcript.processVertex(v); err != nil {
			return err
		}
		for i, l := range resp.Logs {
			if logConsumed[i] || l.Vertex != v.Digest {
				continue
			}
			logConsumed[i] = true
			if err := d.transcript.onLog(l); err != nil {
				return err
			}
		}
		for i, s := range resp.Statuses {
			if statusConsumed[i] || s.Vertex != v.Digest || s.Completed == nil {
				continue
			}
			statusConsumed[i] = true
			if err := d.transcript.onStatus(s); err != nil {
				return err
			}
		}
	}

	for i, l := range resp.Logs {
		if logConsumed[i] {
			continue
		}
		if err := d.transcript.onLog(l); err != nil {
			return err
		}
	}
	for i, s := range resp.Statuses {
		if statusConsumed[i] {
			continue
		}
		if err := d.transcript.onStatus(s); err != nil {
			return err
		}
	}

	d.transcript.maybeEmitProgress(d.onEvent)
	return nil
}

func (d *Decoder) emit(e BuildEvent) {
	if d.onEvent != nil {
		d.onEvent(e)
	}
}
