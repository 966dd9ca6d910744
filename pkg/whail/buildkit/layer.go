package buildkit

import "strings"

// extractingPrefix is stripped from a VertexStatus.Id to recover the bare
// layer digest it refers to.
const extractingPrefix = "extracting "

// layerDigestFromStatusID strips an "extracting " prefix, if present, from a
// VertexStatus id to recover the underlying layer digest string.
func layerDigestFromStatusID(id string) string {
	return strings.TrimPrefix(id, extractingPrefix)
}

// withStatus applies one VertexStatus to the owning vertex's layer state.
// Statuses with total == 0 are ignored except "extract".
func (v *vertexInfo) withStatus(status *TraceVertexStatus) {
	layerID := layerDigestFromStatusID(status.ID)
	name := status.Name

	if status.Total == 0 && name != "extract" {
		return
	}

	switch name {
	case "downloading":
		l := v.ensureLayer(layerID)
		l.currentOperation = opDownloading
		l.completedBytes = status.Current
		l.totalBytes = status.Total
	case "extract":
		l := v.ensureLayer(layerID)
		if status.Completed != nil {
			l.currentOperation = opPullComplete
			l.completedBytes = l.totalBytes
		} else {
			prevTotal := l.totalBytes
			l.currentOperation = opExtracting
			l.completedBytes = 0
			l.totalBytes = prevTotal
		}
	case "done":
		l, existed := v.layer(layerID)
		if !existed {
			// Layer never observed downloading/extracting: a cached layer
			// that never needed work.
			nl := v.ensureLayer(layerID)
			nl.currentOperation = opPullComplete
			nl.completedBytes = status.Current
			nl.totalBytes = status.Total
			return
		}
		if l.currentOperation > opDownloadComplete {
			// Already extracting or further along: a late "done" for the
			// download phase is out-of-order and dropped, preserving the
			// more advanced state.
			return
		}
		l.currentOperation = opDownloadComplete
		l.completedBytes = status.Current
		l.totalBytes = status.Total
	default:
		// Unrecognized status name: silently ignored. The legacy build
		// decoder rejects unknown statuses; this one tolerates them.
	}
}

// isPastDownload reports whether the named layer has already advanced to
// Extracting or PullComplete. Used before applying a "done" status to decide
// whether the transcript line would be out-of-order: a bare download
// completion for a layer already extracting (or further) is stale and must
// be suppressed, matching withStatus's own drop rule for the same case.
func (v *vertexInfo) isPastDownload(layerID string) bool {
	l, existed := v.layer(layerID)
	if !existed {
		return false
	}
	return l.currentOperation > opDownloadComplete
}

// operationOf returns the named layer's current operation and whether it
// exists at all. Used by the "downloading" render rule, which fires
// whenever the layer is not already known to be Downloading.
func (v *vertexInfo) operationOf(layerID string) (layerOperation, bool) {
	l, existed := v.layer(layerID)
	if !existed {
		return 0, false
	}
	return l.currentOperation, true
}

// isPresentNotExtracting reports whether the named layer exists and has not
// yet reached Extracting — i.e. it is Downloading or DownloadComplete. Used
// to decide whether an "extract" status should render an "extracting" line.
func (v *vertexInfo) isPresentNotExtracting(layerID string) bool {
	l, existed := v.layer(layerID)
	if !existed {
		return false
	}
	return l.currentOperation == opDownloading || l.currentOperation == opDownloadComplete
}
