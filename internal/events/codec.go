package events

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode marshals an event for the wire.
func Encode(event any) ([]byte, error) {
	data, err := msgpack.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return data, nil
}

// Decode unmarshals a wire payload into the provided pointer.
func Decode(data []byte, event any) error {
	if err := msgpack.Unmarshal(data, event); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	return nil
}
