package service

import (
	"context"
	"errors"
	"time"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/domain/events"
	"drgroup/cmd/internal/infrastructure/aws/websocket"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// fallbackSessionTTL applies when a token carries no exp claim.
const fallbackSessionTTL = 12 * time.Hour

type ConnectionRepository interface {
	Save(conn *entity.Connection) error
	Delete(connID string) error
	FindAll() ([]string, error)
	FindStale(now, cutoff int64) ([]*entity.Connection, error)
	UpdateHeartbeat(connID string, now int64) error
}

// EventBroadcaster fans a change notification out to every open dashboard.
type EventBroadcaster interface {
	Broadcast(ctx context.Context, evt events.SocketEvent)
}

type WebSocketService struct {
	ConnRepo ConnectionRepository
	Gateway  websocket.GatewayClient
}

func NewWebSocketService(repo ConnectionRepository, gateway websocket.GatewayClient) *WebSocketService {
	return &WebSocketService{
		ConnRepo: repo,
		Gateway:  gateway,
	}
}

func (s *WebSocketService) RegisterConnection(subject, connectionID string, exp int64) apierror.ErrorResponse {
	now := utils.NowUTC()
	expiresAt := exp * 1000 // "exp" is in seconds, we store millis
	if exp <= 0 {
		expiresAt = now + fallbackSessionTTL.Milliseconds()
	}

	conn := &entity.Connection{
		ConnectionID:    connectionID,
		Subject:         subject,
		ExpiresAt:       expiresAt,
		LastHeartbeatAt: now, // Avoid dashboards getting disconnected immediately
		CreatedAt:       now,
	}

	if err := s.ConnRepo.Save(conn); err != nil {
		log.Errorf("failed to save connection: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

func (s *WebSocketService) RemoveConnection(connectionID string) {
	// Not the client's fault if this fails
	_ = s.ConnRepo.Delete(connectionID)
}

func (s *WebSocketService) HandleMessage(msg *contract.IncomingSocketMessage, connID string) {
	switch msg.Type {
	case contract.EventPing:
		s.handlePing(connID)
	}
}

func (s *WebSocketService) DispatchToConnection(ctx context.Context, connID string, evt events.SocketEvent) {
	_ = s.Gateway.PostToConnection(ctx, connID, envelope(evt))
}

// Broadcast sends an event to every registered connection.
func (s *WebSocketService) Broadcast(ctx context.Context, evt events.SocketEvent) {
	conns, err := s.ConnRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch all connections for broadcast: %v", err)
		return
	}

	msg := envelope(evt)
	for _, connID := range conns {
		// One stale connection must not block the others
		err = s.Gateway.PostToConnection(ctx, connID, msg)
		if errors.Is(err, websocket.ErrConnectionGone) {
			log.Debugf("dropping gone connection %s", connID)
			_ = s.ConnRepo.Delete(connID)
		}
	}
}

// SweepStale notifies and drops every connection that missed its heartbeat
// window or outlived its token. It returns how many were dropped.
func (s *WebSocketService) SweepStale(ctx context.Context, now int64) int {
	cutoff := now - entity.HeartbeatPeriodMillis - entity.HeartbeatToleranceMillis
	conns, err := s.ConnRepo.FindStale(now, cutoff)
	if err != nil {
		log.Errorf("failed to fetch stale connections: %v", err)
		return 0
	}

	msg := envelope(&events.SessionExpired{})
	for _, conn := range conns {
		// So the client knows NOT to try reconnecting
		_ = s.Gateway.PostToConnection(ctx, conn.ConnectionID, msg)
		_ = s.Gateway.DeleteConnection(ctx, conn.ConnectionID)
		_ = s.ConnRepo.Delete(conn.ConnectionID)
	}
	return len(conns)
}

func (s *WebSocketService) handlePing(connID string) {
	now := utils.NowUTC()
	err := s.ConnRepo.UpdateHeartbeat(connID, now)
	if err != nil {
		log.Errorf("failed to update heartbeat: %v", err)
		return
	}

	go s.DispatchToConnection(context.Background(), connID, &events.Ack{})
}

func envelope(evt events.SocketEvent) *contract.OutgoingSocketMessage {
	return &contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	}
}
