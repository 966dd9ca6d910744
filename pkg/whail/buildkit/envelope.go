package buildkit

import (
	"encoding/json"
	"fmt"

	"github.com/docker/docker/pkg/jsonmessage"
)

// envelope IDs recognized on the wire.
const (
	envelopeImageID = "moby.image.id"
	envelopeTrace   = "moby.buildkit.trace"
)

// envelopeKind classifies a decoded JSON message into one of the three
// events the decoder cares about, or ignored (forward compatibility).
type envelopeKind int

const (
	envelopeIgnored envelopeKind = iota
	envelopeError
	envelopeImageComplete
	envelopeTraceMessage
)

// classify inspects a decoded jsonmessage.JSONMessage and determines which
// of the three decoders (error / image id / trace) applies. At most one
// fires per line.
func classify(msg *jsonmessage.JSONMessage) envelopeKind {
	if msg.ErrorMessage != "" {
		return envelopeError
	}
	switch msg.ID {
	case envelopeImageID:
		return envelopeImageComplete
	case envelopeTrace:
		return envelopeTraceMessage
	default:
		return envelopeIgnored
	}
}

// imageIDPayload is the shape of the "moby.image.id" envelope's aux field.
type imageIDPayload struct {
	ID string `json:"ID"`
}

// decodeImageID extracts the final image id from a "moby.image.id"
// envelope's aux payload. A missing aux or ID field is a ProtocolError.
func decodeImageID(msg *jsonmessage.JSONMessage) (string, error) {
	if msg.Aux == nil {
		return "", &ProtocolError{Reason: "moby.image.id envelope missing aux payload"}
	}
	var payload imageIDPayload
	if err := json.Unmarshal(*msg.Aux, &payload); err != nil {
		return "", &ProtocolError{Reason: "moby.image.id aux payload is not valid JSON", Err: err}
	}
	if payload.ID == "" {
		return "", &ProtocolError{Reason: "moby.image.id envelope missing ID field"}
	}
	return payload.ID, nil
}

// errorMessage extracts the error text from an envelope classified as
// envelopeError. The wire schema carries this as a plain string field
// (`{"error": "<string>"}`), which jsonmessage.JSONMessage unmarshals into
// its deprecated ErrorMessage string field, not the errorDetail-backed Error
// struct.
func errorMessage(msg *jsonmessage.JSONMessage) string {
	return msg.ErrorMessage
}

// quoteLine renders a raw line as a JSON string for safe inclusion in a
// MalformedResponseError.
func quoteLine(line []byte) string {
	quoted, err := json.Marshal(string(line))
	if err != nil {
		return fmt.Sprintf("%q", string(line))
	}
	return string(quoted)
}
