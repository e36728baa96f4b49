package ws

import (
	"log/slog"
	"time"

	"energy_report/internal/runner"
)

// Bridge broadcasts run lifecycle events to the WebSocket hub.
type Bridge struct {
	hub    *Hub
	logger *slog.Logger
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub, logger: hub.logger}
}

func (b *Bridge) OnRunStarted(at time.Time, trigger string) {
	b.broadcast(TypeRunStarted, RunStartedPayload{StartedAt: formatTime(at), Trigger: trigger})
}

// OnRunFinished sends run:finished for a successful run and run:failed
// otherwise.
func (b *Bridge) OnRunFinished(s *runner.RunSummary) {
	msgType := TypeRunFinished
	if !s.Success {
		msgType = TypeRunFailed
	}
	b.broadcast(msgType, RunFinishedFromSummary(s))
}

func (b *Bridge) OnStatus(s StatusPayload) {
	b.broadcast(TypeStatus, s)
}

func (b *Bridge) broadcast(msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		b.logger.Error("marshaling event", "type", msgType, "err", err)
		return
	}
	b.hub.Broadcast(msg)
}
