package buildkit

import (
	"encoding/json"

	controlapi "github.com/moby/buildkit/api/services/control"
	"github.com/docker/docker/pkg/jsonmessage"
)

// decodeTrace decodes a "moby.buildkit.trace" envelope's aux field into a
// StatusResponse.
//
// The aux field is a base64-encoded protobuf StatusResponse, but it arrives
// inside the envelope as a JSON string. Decoding it into a []byte target
// lets encoding/json perform the base64 decode itself, instead of a manual
// encoding/base64.StdEncoding.DecodeString call.
func decodeTrace(msg *jsonmessage.JSONMessage) (*StatusResponse, error) {
	if msg.Aux == nil {
		return nil, &ProtocolError{Reason: "moby.buildkit.trace envelope missing aux payload"}
	}

	var dt []byte
	if err := json.Unmarshal(*msg.Aux, &dt); err != nil {
		return nil, &ProtocolError{Reason: "moby.buildkit.trace aux payload is not valid base64", Err: err}
	}

	resp := &controlapi.StatusResponse{}
	if err := resp.Unmarshal(dt); err != nil {
		return nil, &ProtocolError{Reason: "moby.buildkit.trace aux payload is not a valid StatusResponse", Err: err}
	}

	return resp, nil
}
