package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dnelfhmi/real-time-whiteboard/internal/domain"
)

// SnapshotStore persists a board as an ordered payload sequence.
// Implemented by the store package; the core never touches files itself.
type SnapshotStore interface {
	Save(name string, payloads []string) error
	Load(name string) ([]string, error)
}

type State int

const (
	StateOpen State = iota
	StateClosing
	StateClosed
)

// Session is the single live collaboration context and the only externally
// facing entry point. It owns the registry and the action log behind one
// mutual-exclusion boundary: every mutating operation is serialized, so
// admission decisions linearize and fan-out has a single sequencing point.
// Endpoint deliveries happen under the lock but are contractually
// non-blocking, so a hung participant cannot stall the rest.
type Session struct {
	mu    sync.RWMutex
	reg   *Registry
	log   *ActionLog
	bus   *Broadcaster
	store SnapshotStore
	state State
}

// NewSession builds an open, empty session. Constructed once at process
// start and shared by every request handler.
func NewSession(store SnapshotStore) *Session {
	reg := NewRegistry()
	actions := NewActionLog()
	return &Session{
		reg:   reg,
		log:   actions,
		bus:   NewBroadcaster(reg, actions),
		store: store,
	}
}

// RegisterUser attaches a participant. A manager registration activates
// immediately; anyone else becomes pending and gets back a one-shot channel
// that resolves with the manager's decision. The manager endpoint is
// notified of the applicant.
func (s *Session) RegisterUser(id domain.UserID, ep Endpoint, isManager bool) (<-chan bool, error) {
	if err := domain.ValidateUserID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if isManager {
		if err := s.reg.RegisterManager(id, ep); err != nil {
			return nil, err
		}
		s.bus.PublishMembership()
		return nil, nil
	}
	decision, err := s.reg.RequestJoin(id, ep)
	if err != nil {
		return nil, err
	}
	if mep, ok := s.reg.ManagerEndpoint(); ok {
		if err := mep.DeliverJoinRequest(id); err != nil {
			log.Warn().Str("module", "core.session").Str("applicant", string(id)).Err(err).Msg("manager notification failed")
		}
	}
	return decision, nil
}

// AwaitDecision blocks on a pending participant's one-shot decision until
// it resolves or the context is cancelled.
func (s *Session) AwaitDecision(ctx context.Context, decision <-chan bool) (bool, error) {
	select {
	case approved := <-decision:
		return approved, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// ApproveClient admits a pending applicant. Manager only.
func (s *Session) ApproveClient(caller, id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManager(caller); err != nil {
		return err
	}
	ep, _, err := s.reg.Approve(id)
	if err != nil {
		return err
	}
	if err := ep.DeliverDecision(true); err != nil {
		log.Warn().Str("module", "core.session").Str("user", string(id)).Err(err).Msg("approval delivery failed")
	}
	s.bus.PublishMembership()
	return nil
}

// RefuseClient turns a pending applicant away. Manager only.
func (s *Session) RefuseClient(caller, id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManager(caller); err != nil {
		return err
	}
	ep, err := s.reg.Reject(id)
	if err != nil {
		return err
	}
	if ep != nil {
		if err := ep.DeliverDecision(false); err != nil {
			log.Warn().Str("module", "core.session").Str("user", string(id)).Err(err).Msg("refusal delivery failed")
		}
	}
	return nil
}

// CanvasAction appends one drawing event and fans it out to every active
// endpoint. Any active participant may draw.
func (s *Session) CanvasAction(caller domain.UserID, payload string) error {
	if strings.ContainsRune(payload, '\n') {
		return domain.ErrInvalidPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActive(caller); err != nil {
		return err
	}
	s.bus.Publish(payload)
	return nil
}

// ClearCanvas wipes the log and tells every active endpoint to clear.
func (s *Session) ClearCanvas(caller domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActive(caller); err != nil {
		return err
	}
	s.bus.PublishClear()
	return nil
}

// SendMessage fans a chat line out to every active endpoint. Chat is never
// recorded in the action log.
func (s *Session) SendMessage(caller domain.UserID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActive(caller); err != nil {
		return err
	}
	s.bus.PublishChat(message)
	return nil
}

// KickUser forcibly detaches a participant. Manager only; the manager
// cannot kick itself, closing the board is its way out.
func (s *Session) KickUser(caller, id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManager(caller); err != nil {
		return err
	}
	if s.reg.IsManager(id) {
		return domain.ErrUnauthorized
	}
	ep, users, removed := s.reg.Remove(id)
	if !removed {
		return nil
	}
	if ep != nil {
		if err := ep.DeliverNotice("You have been kicked out by the manager."); err != nil {
			log.Warn().Str("module", "core.session").Str("user", string(id)).Err(err).Msg("kick notice failed")
		}
		if err := ep.DeliverDisconnect(); err != nil {
			log.Warn().Str("module", "core.session").Str("user", string(id)).Err(err).Msg("kick disconnect failed")
		}
	}
	if users != nil {
		s.bus.PublishMembership()
	}
	return nil
}

// Deregister handles a voluntary departure. Idempotent for unknown ids.
func (s *Session) Deregister(id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	_, users, removed := s.reg.Remove(id)
	if removed && users != nil {
		s.bus.PublishMembership()
	}
	return nil
}

// CreateNewBoard discards the current drawing. Manager only.
func (s *Session) CreateNewBoard(caller domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManager(caller); err != nil {
		return err
	}
	s.bus.PublishClear()
	return nil
}

// OpenBoard replaces the board with a persisted snapshot and replays it to
// every active endpoint. The restore is all-or-nothing: a read failure
// leaves the in-memory log untouched. Manager only.
func (s *Session) OpenBoard(caller domain.UserID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManager(caller); err != nil {
		return err
	}
	payloads, err := s.store.Load(name)
	if err != nil {
		return fmt.Errorf("open board %q: %w", name, err)
	}
	s.log.Restore(payloads)
	s.bus.Replay()
	log.Info().Str("module", "core.session").Str("board", name).Int("actions", len(payloads)).Msg("board opened")
	return nil
}

// SaveBoard persists the current log. Manager only.
func (s *Session) SaveBoard(caller domain.UserID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManager(caller); err != nil {
		return err
	}
	if err := s.store.Save(name, s.log.Snapshot()); err != nil {
		return fmt.Errorf("save board %q: %w", name, err)
	}
	log.Info().Str("module", "core.session").Str("board", name).Int("actions", s.log.Len()).Msg("board saved")
	return nil
}

// CloseBoard ends the session: every endpoint is notified and detached
// best-effort, the log is cleared, and no further operation is accepted.
// Manager only; terminal.
func (s *Session) CloseBoard(caller domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManager(caller); err != nil {
		return err
	}
	s.state = StateClosing
	eps := s.reg.DetachAll()
	s.log.Clear()
	for _, ae := range eps {
		if err := ae.Endpoint.DeliverNotice("The whiteboard session is closing. You will be disconnected."); err != nil {
			log.Warn().Str("module", "core.session").Str("user", string(ae.ID)).Err(err).Msg("close notice failed")
		}
		if err := ae.Endpoint.DeliverDisconnect(); err != nil {
			log.Warn().Str("module", "core.session").Str("user", string(ae.ID)).Err(err).Msg("close disconnect failed")
		}
	}
	s.state = StateClosed
	log.Info().Str("module", "core.session").Msg("session closed")
	return nil
}

// SessionState returns the full log in order, for bootstrap of a newly
// active participant.
func (s *Session) SessionState(caller domain.UserID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireActive(caller); err != nil {
		return nil, err
	}
	return s.log.Snapshot(), nil
}

// ListActive returns the active ids, manager first then admission order.
func (s *Session) ListActive() []domain.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.ListActive()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) checkOpen() error {
	if s.state != StateOpen {
		return domain.ErrSessionClosed
	}
	return nil
}

func (s *Session) requireManager(caller domain.UserID) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.reg.IsManager(caller) {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *Session) requireActive(caller domain.UserID) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.reg.IsActive(caller) {
		return domain.ErrNotActive
	}
	return nil
}
