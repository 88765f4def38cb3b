package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEventType is returned by Decode for payloads it has no type for.
var ErrUnknownEventType = errors.New("unknown event type")

var factories = map[string]func() Event{
	EventJobQueued:     func() Event { return &JobQueued{} },
	EventJobStatus:     func() Event { return &JobStatusChanged{} },
	EventJobCompleted:  func() Event { return &JobCompleted{} },
	EventJobFailed:     func() Event { return &JobFailed{} },
	EventJobCanceled:   func() Event { return &JobCanceled{} },
	EventBatchProgress: func() Event { return &BatchProgress{} },
	EventBatchFinished: func() Event { return &BatchFinished{} },
}

// Decode restores the concrete event a RawEvent was persisted from.
func Decode(raw RawEvent) (Event, error) {
	factory, ok := factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, raw.EventType)
	}

	e := factory()
	if err := json.Unmarshal([]byte(raw.Payload), e); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", raw.EventType, err)
	}
	return e, nil
}
