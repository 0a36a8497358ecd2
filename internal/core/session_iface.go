package core

import "trivia-party-service/internal/domain"

// SessionID identifies one client connection, independent of the
// player id the client announces at join time.
type SessionID string

// PlayerSession binds domain.Player and its transport endpoint.
// This is what a room stores and fans out to.
type PlayerSession interface {
	Meta() *domain.Player
	Signal() SignalConnection
}
