package events

import "drgroup/cmd/internal/contract"

type SocketEvent interface {
	GetType() contract.EventType
}

type Ack struct{}

func (*Ack) GetType() contract.EventType {
	return contract.EventAck
}

type ConnectionKill struct {
	Code   string  `json:"code"`
	Reason *string `json:"reason,omitempty"`
}

func (e *ConnectionKill) GetType() contract.EventType {
	return contract.EventConnectionKill
}

type SessionExpired struct{}

func (*SessionExpired) GetType() contract.EventType {
	return contract.EventSessionExpired
}

// SeriesCreated carries every record stored by a create call, one-off
// commitments included.
type SeriesCreated struct {
	*contract.CommitmentBatchResponse
}

func (e *SeriesCreated) GetType() contract.EventType {
	return contract.EventSeriesCreated
}

type SeriesExtended struct {
	*contract.ExtendSeriesResponse
}

func (e *SeriesExtended) GetType() contract.EventType {
	return contract.EventSeriesExtended
}

type CommitmentUpdated struct {
	*contract.CommitmentResponse
}

func (e *CommitmentUpdated) GetType() contract.EventType {
	return contract.EventCommitmentUpdated
}

// CommitmentsDeleted holds only ids, a cascade may remove a whole group.
type CommitmentsDeleted struct {
	IDs     []string `json:"ids"`
	GroupID string   `json:"group_id,omitempty"`
}

func (e *CommitmentsDeleted) GetType() contract.EventType {
	return contract.EventCommitmentsDeleted
}

type PaymentCreated struct {
	*contract.PaymentResponse
}

func (e *PaymentCreated) GetType() contract.EventType {
	return contract.EventPaymentCreated
}

type ExtensionDue struct {
	*contract.ExtensionCheckResponse
}

func (e *ExtensionDue) GetType() contract.EventType {
	return contract.EventExtensionDue
}
