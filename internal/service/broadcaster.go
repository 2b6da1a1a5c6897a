package service

// Broadcaster publishes change events to subscribers (avoids import cycle with ws)
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// Change feed message types
const (
	MsgSyncStarted   = "sync_started"
	MsgSyncCompleted = "sync_completed"
	MsgSyncFailed    = "sync_failed"
	MsgRecordUpdated = "record_updated"
	MsgRecordDeleted = "record_deleted"
)

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, interface{}) {}
