package realtime

import (
	"encoding/json"
	"time"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent is the notification broadcast after every successful write.
// It intentionally carries no row data: subscribers react with a full
// re-fetch, so the id is informational only.
type ChangeEvent struct {
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(op, id string) *ChangeEvent {
	return &ChangeEvent{
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
