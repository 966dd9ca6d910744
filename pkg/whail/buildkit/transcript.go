package buildkit

import (
	"fmt"
	"io"
	"strings"
	"time"

	digest "github.com/opencontainers/go-digest"
)

// bulkheadVertexName is the one known bulkhead vertex: its declared inputs
// are incomplete, but by the time it starts every earlier vertex is in
// practice done. Its start is a safe point to flush every pending
// completion regardless of declared dependency.
const bulkheadVertexName = "exporting to image"

// trustworthyCompleteNames and trustworthyLoadMetadataPrefix identify vertex
// names whose `completed`
// marker is reliable: the daemon never re-opens vertices with these names,
// so their DONE/CACHED line can be written immediately rather than
// deferred.
const trustworthyCopyContext = "copy /context /"

var trustworthyCompleteNames = map[string]bool{
	bulkheadVertexName:     true,
	trustworthyCopyContext: true,
}

const trustworthyLoadMetadataPrefix = "[internal] load metadata for "

func isTrustworthyComplete(name string) bool {
	if trustworthyCompleteNames[name] {
		return true
	}
	return strings.HasPrefix(name, trustworthyLoadMetadataPrefix)
}

// transcript owns the vertex state tracker and the transcript writer. It is
// the single stateful core of the decoder, and it is not safe for
// concurrent use: the decoder is driven entirely by its caller's read loop.
type transcript struct {
	out io.Writer

	// startedVertices maps every vertex ever observed with `started` to its
	// tracked state. Entries are never removed — stepNumber identity must
	// survive re-opens.
	startedVertices map[digest.Digest]*vertexInfo

	// pendingCompletedVertices holds digests whose `completed` has been
	// observed but whose terminator line has been deferred.
	pendingCompletedVertices map[digest.Digest]bool

	// activeVertices is the set of vertices with observed started but no
	// observed completed, for the progress aggregator.
	activeVertices map[digest.Digest]bool

	// lastWrittenVertexDigest is the vertex whose header was most recently
	// printed without a terminator. It is meaningful only while
	// haveLastWritten is true; terminal writes clear haveLastWritten.
	lastWrittenVertexDigest digest.Digest
	haveLastWritten         bool

	// lastActiveSteps is the most recently emitted BuildProgress payload,
	// for the aggregator's change-detection rule.
	lastActiveSteps []ActiveImageBuildStep
}

func newTranscript(out io.Writer) *transcript {
	return &transcript{
		out:                      out,
		startedVertices:          make(map[digest.Digest]*vertexInfo),
		pendingCompletedVertices: make(map[digest.Digest]bool),
		activeVertices:           make(map[digest.Digest]bool),
	}
}

// writeLine writes one transcript line for vertex number n, terminated by a
// newline.
func (t *transcript) writeLine(n int, body string) error {
	_, err := fmt.Fprintf(t.out, "#%d %s\n", n, body)
	return err
}

// transitionTo implements the step-transition protocol: if the
// transcript is currently positioned at a different vertex, emit its "..."
// continuation line before switching.
func (t *transcript) transitionTo(d digest.Digest) error {
	if t.haveLastWritten && t.lastWrittenVertexDigest != d {
		prev := t.startedVertices[t.lastWrittenVertexDigest]
		if prev != nil {
			if err := t.writeLine(prev.stepNumber, "..."); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(t.out); err != nil {
				return err
			}
		}
	}
	t.lastWrittenVertexDigest = d
	t.haveLastWritten = true
	return nil
}

// clearWritten marks the transcript as positioned nowhere, as terminal
// writes do.
func (t *transcript) clearWritten() {
	t.haveLastWritten = false
}

// processVertex is the decoder's edge-detector for one Vertex entry in a
// StatusResponse. BuildKit reports full-state snapshots, not deltas: the
// same vertex reappears in every subsequent StatusResponse with Started
// still set, so the decoder must distinguish a genuinely new transition
// (first start, a restart after completion, a first completion) from a
// repeat of a transition already rendered.
func (t *transcript) processVertex(v *TraceVertex) error {
	info, known := t.startedVertices[v.Digest]

	switch {
	case !known:
		if v.Started == nil {
			return nil
		}
		if err := t.onVertexStarted(v); err != nil {
			return err
		}
		if v.Completed != nil {
			return t.onVertexCompleted(v)
		}
		return nil
	case info.completed && v.Completed == nil:
		// Genuine restart: this vertex's life was completed, and is now
		// reported started again with no completion.
		return t.onVertexStarted(v)
	case !info.completed && v.Completed != nil:
		return t.onVertexCompleted(v)
	default:
		// Repeat snapshot of a transition already rendered.
		return nil
	}
}

// onVertexStarted handles the first observed `started` for a vertex, or a
// re-start of a previously deferred-complete vertex.
func (t *transcript) onVertexStarted(v *TraceVertex) error {
	info, known := t.startedVertices[v.Digest]

	if known {
		// Re-start of a vertex we've already assigned a step number to.
		// Drop it from pending-complete (it is no longer complete) without
		// reassigning stepNumber.
		delete(t.pendingCompletedVertices, v.Digest)
		info.completed = false
		t.activeVertices[v.Digest] = true
		if err := t.transitionTo(v.Digest); err != nil {
			return err
		}
		return t.writeLine(info.stepNumber, info.name)
	}

	// Flush dependency-driven pending completions before this vertex's own
	// header: each declared input that's pending-complete is now causally
	// justified, because its dependent just started.
	for _, input := range v.Inputs {
		if t.pendingCompletedVertices[input] {
			if err := t.flushPendingCompletion(input); err != nil {
				return err
			}
		}
	}

	// A bulkhead vertex depends on everything in practice, even though it
	// doesn't declare it: flush every remaining pending completion.
	if v.Name == bulkheadVertexName {
		if err := t.flushAllPending(); err != nil {
			return err
		}
	}

	stepNumber := len(t.startedVertices) + 1
	started := time.Now()
	if v.Started != nil {
		started = *v.Started
	}
	info = newVertexInfo(v.Digest, v.Name, started, stepNumber)
	t.startedVertices[v.Digest] = info
	t.activeVertices[v.Digest] = true

	if err := t.transitionTo(v.Digest); err != nil {
		return err
	}
	return t.writeLine(stepNumber, v.Name)
}

// onVertexCompleted handles an observed `completed` for a vertex.
func (t *transcript) onVertexCompleted(v *TraceVertex) error {
	info, known := t.startedVertices[v.Digest]
	if !known {
		// A vertex can't complete before it starts; callers only invoke
		// this after onVertexStarted has run for the same StatusResponse
		// entry when both started and completed are set simultaneously.
		return &ProtocolError{Reason: fmt.Sprintf("vertex %s completed without having started", v.Digest)}
	}

	info.cached = v.Cached
	info.completed = true
	delete(t.activeVertices, v.Digest)

	if v.Error != "" {
		if err := t.transitionTo(v.Digest); err != nil {
			return err
		}
		if err := t.writeLine(info.stepNumber, "ERROR: "+v.Error); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(t.out); err != nil {
			return err
		}
		t.clearWritten()
		return nil
	}

	if isTrustworthyComplete(v.Name) {
		return t.writeTerminator(info)
	}

	// Not trustworthy: defer. Written later via flushPendingCompletion.
	t.pendingCompletedVertices[v.Digest] = true
	return nil
}

// writeTerminator writes the DONE or CACHED line for an already-tracked
// vertex and clears the transcript's current position.
func (t *transcript) writeTerminator(info *vertexInfo) error {
	if err := t.transitionTo(info.digest); err != nil {
		return err
	}
	term := "DONE"
	if info.cached {
		term = "CACHED"
	}
	if err := t.writeLine(info.stepNumber, term); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(t.out); err != nil {
		return err
	}
	t.clearWritten()
	return nil
}

// flushPendingCompletion writes the deferred terminator for one pending
// vertex and removes it from the pending set.
func (t *transcript) flushPendingCompletion(d digest.Digest) error {
	if !t.pendingCompletedVertices[d] {
		return nil
	}
	delete(t.pendingCompletedVertices, d)
	info, known := t.startedVertices[d]
	if !known {
		return nil
	}
	return t.writeTerminator(info)
}

// flushAllPending writes every deferred terminator currently pending, in an
// arbitrary but deterministic (step-number) order.
func (t *transcript) flushAllPending() error {
	pending := make([]digest.Digest, 0, len(t.pendingCompletedVertices))
	for d := range t.pendingCompletedVertices {
		pending = append(pending, d)
	}
	// Order by assigned step number so repeated decodes of the same stream
	// produce identical output.
	orderByStep(pending, t.startedVertices)
	for _, d := range pending {
		if err := t.flushPendingCompletion(d); err != nil {
			return err
		}
	}
	return nil
}

// orderByStep sorts digests by their assigned stepNumber, ascending.
func orderByStep(ds []digest.Digest, infos map[digest.Digest]*vertexInfo) {
	for i := 1; i < len(ds); i++ {
		for j := i; j > 0; j-- {
			a, b := infos[ds[j-1]], infos[ds[j]]
			if a == nil || b == nil || a.stepNumber <= b.stepNumber {
				break
			}
			ds[j-1], ds[j] = ds[j], ds[j-1]
		}
	}
}

// onLog renders one vertex log entry: decoded UTF-8,
// right-trimmed, split on line breaks, each segment timestamped relative to
// the vertex's observed start.
func (t *transcript) onLog(l *TraceVertexLog) error {
	info, known := t.startedVertices[l.Vertex]
	if !known {
		return &ProtocolError{Reason: fmt.Sprintf("log for vertex %s never started", l.Vertex)}
	}

	text := strings.TrimRight(string(l.Msg), "\n\r")
	if text == "" {
		return nil
	}

	if err := t.transitionTo(l.Vertex); err != nil {
		return err
	}
	ts := formatElapsed(info.started, l.Timestamp)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if err := t.writeLine(info.stepNumber, ts+" "+line); err != nil {
			return err
		}
	}
	return nil
}

// onStatus renders one VertexStatus line per the layer-status state
// machine, then applies it to the owning vertex's layer state.
func (t *transcript) onStatus(s *TraceVertexStatus) error {
	info, known := t.startedVertices[s.Vertex]
	if !known {
		return &ProtocolError{Reason: fmt.Sprintf("status for vertex %s never started", s.Vertex)}
	}

	layerID := layerDigestFromStatusID(s.ID)

	switch {
	case s.Completed != nil:
		if !info.isPastDownload(layerID) {
			if err := t.transitionTo(s.Vertex); err != nil {
				return err
			}
			if err := t.writeLine(info.stepNumber, layerID+": done"); err != nil {
				return err
			}
		}
	case s.Name == "downloading":
		op, existed := info.operationOf(layerID)
		if !existed || op != opDownloading {
			if err := t.transitionTo(s.Vertex); err != nil {
				return err
			}
			if err := t.writeLine(info.stepNumber, fmt.Sprintf("%s: downloading %s", layerID, humaniseBytes(s.Total))); err != nil {
				return err
			}
		}
	case s.Name == "extract":
		if info.isPresentNotExtracting(layerID) {
			if err := t.transitionTo(s.Vertex); err != nil {
				return err
			}
			if err := t.writeLine(info.stepNumber, layerID+": extracting"); err != nil {
				return err
			}
		}
	}

	info.withStatus(s)
	return nil
}

// flushAll writes every still-pending deferred completion, called once at
// end-of-stream.
func (t *transcript) flushAll() error {
	return t.flushAllPending()
}
