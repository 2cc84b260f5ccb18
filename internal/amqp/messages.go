package amqp

import (
	"encoding/json"
	"time"
)

// RecordExportMessage asks the worker to export one activity record.
// It carries only the record id; the worker fetches the full row from the
// database so the message stays valid even if the payload format changes.
type RecordExportMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordExportMessage(id int64) *RecordExportMessage {
	return &RecordExportMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordExportMessageFromJSON creates a message from JSON bytes.
func RecordExportMessageFromJSON(data []byte) (*RecordExportMessage, error) {
	var msg RecordExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
