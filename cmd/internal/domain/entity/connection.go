package entity

import "time"

const (
	HeartbeatPeriod    = 60 * time.Second
	HeartbeatTolerance = 10 * time.Second

	HeartbeatPeriodMillis    = int64(60 * 1000)
	HeartbeatToleranceMillis = int64(10 * 1000)
)

// Connection is a dashboard websocket session registered through the API
// Gateway. Subject is the identity provider "sub" of the signed in operator.
type Connection struct {
	ConnectionID    string `gorm:"primaryKey;autoIncrement:false"`
	Subject         string `gorm:"not null;index"`
	ExpiresAt       int64  `gorm:"not null"`
	LastHeartbeatAt int64  `gorm:"not null;index"`
	CreatedAt       int64  `gorm:"not null"`
}

// IsStale reports whether the connection missed its heartbeat window.
func (c *Connection) IsStale(now int64) bool {
	return now-c.LastHeartbeatAt > HeartbeatPeriodMillis+HeartbeatToleranceMillis
}
