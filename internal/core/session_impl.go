package core

import "trivia-party-service/internal/domain"

// playerSession implements PlayerSession by pairing meta + transport.
type playerSession struct {
	meta *domain.Player
	conn SignalConnection
}

func NewPlayerSession(meta *domain.Player, conn SignalConnection) PlayerSession {
	return &playerSession{meta: meta, conn: conn}
}

func (p *playerSession) Meta() *domain.Player     { return p.meta }
func (p *playerSession) Signal() SignalConnection { return p.conn }
