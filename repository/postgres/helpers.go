package postgres

import (
	"encoding/json"
	"time"
)

func marshalLabels(labels []string) []byte {
	if len(labels) == 0 {
		return nil
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return nil
	}
	return b
}

func marshalChannels(channels []string) []byte {
	if len(channels) == 0 {
		return nil
	}
	b, err := json.Marshal(channels)
	if err != nil {
		return nil
	}
	return b
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
