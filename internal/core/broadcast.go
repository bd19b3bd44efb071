package core

import (
	"github.com/rs/zerolog/log"
)

// Broadcaster appends events to the log and fans them out to every active
// endpoint. Delivery to one endpoint is independent of delivery to any
// other: a failing endpoint is logged and skipped, never surfaced to the
// publisher and never allowed to abort the append.
type Broadcaster struct {
	reg *Registry
	log *ActionLog
}

func NewBroadcaster(reg *Registry, actions *ActionLog) *Broadcaster {
	return &Broadcaster{reg: reg, log: actions}
}

// Publish appends the payload and delivers it to every active endpoint.
func (b *Broadcaster) Publish(payload string) uint64 {
	seq := b.log.Append(payload)
	sent := 0
	for _, ae := range b.reg.ActiveEndpoints() {
		if err := ae.Endpoint.DeliverEvent(payload); err != nil {
			log.Warn().Str("module", "core.broadcast").Str("user", string(ae.ID)).Err(err).Msg("event delivery failed")
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.broadcast").Uint64("seq", seq).Int("sent_to", sent).Msg("published")
	return seq
}

// PublishMembership delivers the current active list to every active endpoint.
func (b *Broadcaster) PublishMembership() {
	users := b.reg.ListActive()
	for _, ae := range b.reg.ActiveEndpoints() {
		if err := ae.Endpoint.DeliverMembership(users); err != nil {
			log.Warn().Str("module", "core.broadcast").Str("user", string(ae.ID)).Err(err).Msg("membership delivery failed")
		}
	}
}

// PublishClear empties the log and delivers a clear signal. The signal is
// not an ActionRecord; nothing is appended.
func (b *Broadcaster) PublishClear() {
	b.log.Clear()
	b.deliverClear()
}

// PublishChat delivers a chat message to every active endpoint. Chat is
// ephemeral: it never touches the action log.
func (b *Broadcaster) PublishChat(message string) {
	for _, ae := range b.reg.ActiveEndpoints() {
		if err := ae.Endpoint.DeliverChat(message); err != nil {
			log.Warn().Str("module", "core.broadcast").Str("user", string(ae.ID)).Err(err).Msg("chat delivery failed")
		}
	}
}

// Replay pushes the log's current content to every active endpoint,
// prefixed by a clear so clients start from a blank canvas. Used after a
// wholesale restore; nothing is appended.
func (b *Broadcaster) Replay() {
	b.deliverClear()
	payloads := b.log.Snapshot()
	for _, ae := range b.reg.ActiveEndpoints() {
		if err := deliverAll(ae.Endpoint, payloads); err != nil {
			log.Warn().Str("module", "core.broadcast").Str("user", string(ae.ID)).Err(err).Msg("replay delivery failed")
		}
	}
}

func (b *Broadcaster) deliverClear() {
	for _, ae := range b.reg.ActiveEndpoints() {
		if err := ae.Endpoint.DeliverClear(); err != nil {
			log.Warn().Str("module", "core.broadcast").Str("user", string(ae.ID)).Err(err).Msg("clear delivery failed")
		}
	}
}

func deliverAll(ep Endpoint, payloads []string) error {
	for _, p := range payloads {
		if err := ep.DeliverEvent(p); err != nil {
			return err
		}
	}
	return nil
}
