package contract

type EventType string

const (
	EventPing EventType = "ping"

	EventConnectionKill EventType = "CONNECTION_KILL"
	EventSessionExpired EventType = "SESSION_EXPIRED"
	EventAck            EventType = "ACK"

	EventSeriesCreated      EventType = "SERIES_CREATED"
	EventSeriesExtended     EventType = "SERIES_EXTENDED"
	EventCommitmentUpdated  EventType = "COMMITMENT_UPDATED"
	EventCommitmentsDeleted EventType = "COMMITMENT_DELETED"
	EventPaymentCreated     EventType = "PAYMENT_CREATED"
	EventExtensionDue       EventType = "EXTENSION_DUE"
)

// IncomingSocketMessage is used for messages we receive from the users.
type IncomingSocketMessage struct {
	Type EventType `json:"type"`
}

// OutgoingSocketMessage is what we send to the Client
type OutgoingSocketMessage struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
