package buildkit

import (
	"time"

	controlapi "github.com/moby/buildkit/api/services/control"
	digest "github.com/opencontainers/go-digest"
)

// Wire types consumed from a decoded StatusResponse. These are aliases onto
// the generated controlapi types rather than repository-local structs: the
// decoder has no business re-declaring BuildKit's wire schema, only reading
// it.
type (
	// StatusResponse is one decoded BuildKit trace payload, carrying three
	// parallel lists each keyed (directly or indirectly) by vertex digest.
	StatusResponse = controlapi.StatusResponse
	// TraceVertex is a build-step node as reported on the wire.
	TraceVertex = controlapi.Vertex
	// TraceVertexStatus is a per-layer-like progress update as reported on
	// the wire.
	TraceVertexStatus = controlapi.VertexStatus
	// TraceVertexLog is a raw log chunk attributed to a vertex.
	TraceVertexLog = controlapi.VertexLog
)

// layerOperation is the ordered lifecycle a single layer passes through.
// Ordering matters: it both drives monotonicity and the progress
// aggregator's least-advanced-with-activity selection.
type layerOperation int

const (
	opDownloading layerOperation = iota
	opDownloadComplete
	opExtracting
	opPullComplete
)

func (o layerOperation) String() string {
	switch o {
	case opDownloading:
		return "downloading"
	case opDownloadComplete:
		return "download-complete"
	case opExtracting:
		return "extracting"
	case opPullComplete:
		return "pull-complete"
	default:
		return "unknown"
	}
}

// layerInfo is the decoder's per-layer state, keyed within a vertexInfo by
// the layer's digest string (extracting-prefix already stripped).
type layerInfo struct {
	currentOperation layerOperation
	completedBytes   int64
	totalBytes       int64
}

// vertexInfo is the decoder's per-started-vertex state. stepNumber is
// assigned once, on first observed `started`, and never reassigned even
// across re-opens.
type vertexInfo struct {
	digest     digest.Digest
	name       string
	started    time.Time
	stepNumber int
	cached     bool
	completed  bool // true while this vertex's current life is completed
	layers     map[string]*layerInfo
	layerOrder []string // insertion order, for deterministic aggregation
}

func newVertexInfo(d digest.Digest, name string, started time.Time, stepNumber int) *vertexInfo {
	return &vertexInfo{
		digest:     d,
		name:       name,
		started:    started,
		stepNumber: stepNumber,
		layers:     make(map[string]*layerInfo),
	}
}

// layer looks up the named layer's state without creating it.
func (v *vertexInfo) layer(id string) (*layerInfo, bool) {
	l, ok := v.layers[id]
	return l, ok
}

// ensureLayer returns the named layer's state, creating it on first
// reference and recording insertion order for deterministic aggregation.
func (v *vertexInfo) ensureLayer(id string) *layerInfo {
	l, ok := v.layers[id]
	if !ok {
		l = &layerInfo{}
		v.layers[id] = l
		v.layerOrder = append(v.layerOrder, id)
	}
	return l
}
