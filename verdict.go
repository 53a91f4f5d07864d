package interchanges

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Verdict is tri-state accessibility verdict
type Verdict uint16

const (
	VERDICT_NOT_BARRIER_FREE = Verdict(iota + 1)
	VERDICT_UNKNOWN
	VERDICT_BARRIER_FREE
	VERDICT_UNDEFINED = Verdict(0)
)

func (iotaIdx Verdict) String() string {
	return [...]string{"undefined", "not_barrier_free", "unknown", "barrier_free"}[iotaIdx]
}

// MarshalJSON encodes verdict as true, null or false
func (iotaIdx Verdict) MarshalJSON() ([]byte, error) {
	switch iotaIdx {
	case VERDICT_BARRIER_FREE:
		return []byte("true"), nil
	case VERDICT_UNKNOWN:
		return []byte("null"), nil
	case VERDICT_NOT_BARRIER_FREE:
		return []byte("false"), nil
	default:
		return nil, errors.Errorf("Unknown verdict %d", iotaIdx)
	}
}

// UnmarshalJSON decodes verdict from true, null or false
func (iotaIdx *Verdict) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*iotaIdx = VERDICT_BARRIER_FREE
	case "null":
		*iotaIdx = VERDICT_UNKNOWN
	case "false":
		*iotaIdx = VERDICT_NOT_BARRIER_FREE
	default:
		return errors.Errorf("Can't decode verdict from '%s'", string(data))
	}
	return nil
}

// Result is outcome of interchange query
type Result struct {
	BarrierFree Verdict
	// Facility IDs of elevators along the path in traversal order. Nil when no path exists.
	Elevators []string
	// Node IDs of the chosen path. Nil when no path exists.
	Path Path
	// Geometry of the chosen path
	Geometry []GeoPoint
}

type resultJSON struct {
	BarrierFree Verdict   `json:"barrierFree"`
	Elevators   *[]string `json:"elevators,omitempty"`
}

// MarshalJSON encodes result as {"barrierFree": true|null|false, "elevators": [...]}.
// elevators is present (possibly empty) unless barrierFree is false.
func (result Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{BarrierFree: result.BarrierFree}
	if result.BarrierFree != VERDICT_NOT_BARRIER_FREE {
		elevators := result.Elevators
		if elevators == nil {
			elevators = []string{}
		}
		out.Elevators = &elevators
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes result encoded by MarshalJSON
func (result *Result) UnmarshalJSON(data []byte) error {
	in := resultJSON{}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*result = Result{BarrierFree: in.BarrierFree}
	if in.Elevators != nil {
		result.Elevators = *in.Elevators
	}
	return nil
}
