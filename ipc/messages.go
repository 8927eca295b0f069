package ipc

import "github.com/nstehr/soy/model"

// These constants must stay in sync with the bridge's message type table.
const (
	TypeHello    = "hello"
	TypeAck      = "ack"
	TypeTick     = "tick"
	TypeCommands = "commands"
)

// HelloMessage opens a session. The expansion list comes from the bridge's
// map analysis and is treated as already computed.
type HelloMessage struct {
	Player        string            `json:"player"`
	Race          string            `json:"race"`
	StartLocation model.Point       `json:"startLocation"`
	MapCenter     model.Point       `json:"mapCenter"`
	Expansions    []model.Expansion `json:"expansions"`
}

// Topology converts the handshake's map data into the economy's view of it.
func (h HelloMessage) Topology() *model.Topology {
	return &model.Topology{
		StartLocation: h.StartLocation,
		MapCenter:     h.MapCenter,
		Expansions:    h.Expansions,
	}
}

type AckMessage struct {
	Status string `json:"status"`
}
