package kafka

import "encoding/json"

// MustMarshal panics on marshal failure; envelope and payload types here are
// all plain JSON-safe structs.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
