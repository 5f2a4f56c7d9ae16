package websocket

import (
	"time"

	"github.com/openioc/vmecore/internal/scan"
	"github.com/openioc/vmecore/internal/types"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Record monitor messages
	MessageTypeRecordUpdate MessageType = "record_update"
	MessageTypeRecordAlarm  MessageType = "record_alarm"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// SystemStatusData represents system state change data
type SystemStatusData struct {
	State   string `json:"state"`
	Records int    `json:"records"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewRecordMessage wraps a scan update. Updates carrying an active alarm
// go out as record_alarm so monitor clients can filter on degraded values.
func NewRecordMessage(update scan.Update) Message {
	msgType := MessageTypeRecordUpdate
	if update.Severity != types.SeverityNone {
		msgType = MessageTypeRecordAlarm
	}
	return NewMessage(msgType, update)
}

// NewSystemStatusMessage reports a system state change.
func NewSystemStatusMessage(state string, recordCount int) Message {
	return NewMessage(MessageTypeSystemStatus, SystemStatusData{
		State:   state,
		Records: recordCount,
	})
}
