package session

import "encoding/json"

func marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

// unmarshal treats corrupt slot data as a miss; consumers re-validate and
// fall back to defaults either way.
func unmarshal(payload []byte, dest any) bool {
	return json.Unmarshal(payload, dest) == nil
}
