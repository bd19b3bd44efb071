package core

import (
	"github.com/rs/zerolog/log"

	"github.com/dnelfhmi/real-time-whiteboard/internal/domain"
)

type participant struct {
	id        domain.UserID
	role      domain.Role
	admission domain.Admission
	endpoint  Endpoint
	// decision resolves the pending wait exactly once (buffered, size 1).
	decision chan bool
}

// ActiveEndpoint pairs an active participant's id with its push capability.
type ActiveEndpoint struct {
	ID       domain.UserID
	Endpoint Endpoint
}

// Registry tracks the manager, pending applicants and active participants.
// It holds no lock of its own: the Session serializes every access as part
// of its single critical section over registry+log.
type Registry struct {
	managerID  domain.UserID
	hasManager bool
	members    map[domain.UserID]*participant
	// active ids in admission order, manager first
	order []domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{members: make(map[domain.UserID]*participant)}
}

// RegisterManager stores the session's single manager as active.
// Only the first call for the session's lifetime succeeds.
func (r *Registry) RegisterManager(id domain.UserID, ep Endpoint) error {
	if r.hasManager {
		return domain.ErrDuplicateManager
	}
	if _, ok := r.members[id]; ok {
		return domain.ErrDuplicateID
	}
	r.managerID = id
	r.hasManager = true
	r.members[id] = &participant{id: id, role: domain.RoleManager, admission: domain.AdmissionActive, endpoint: ep}
	r.order = append(r.order, id)
	log.Info().Str("module", "core.registry").Str("user", string(id)).Msg("manager registered")
	return nil
}

// RequestJoin adds the id as pending and returns the one-shot decision
// channel the applicant can wait on. The caller owes the manager a
// join-request notification.
func (r *Registry) RequestJoin(id domain.UserID, ep Endpoint) (<-chan bool, error) {
	if p, ok := r.members[id]; ok && (p.admission == domain.AdmissionPending || p.admission == domain.AdmissionActive) {
		return nil, domain.ErrDuplicateID
	}
	decision := make(chan bool, 1)
	r.members[id] = &participant{id: id, role: domain.RoleRegular, admission: domain.AdmissionPending, endpoint: ep, decision: decision}
	log.Info().Str("module", "core.registry").Str("user", string(id)).Msg("join requested")
	return decision, nil
}

// Approve moves a pending id to active and returns its endpoint together
// with the updated active list for broadcast.
func (r *Registry) Approve(id domain.UserID) (Endpoint, []domain.UserID, error) {
	p, ok := r.members[id]
	if !ok || p.admission != domain.AdmissionPending {
		return nil, nil, domain.ErrUnknownPendingID
	}
	p.admission = domain.AdmissionActive
	r.order = append(r.order, id)
	p.decision <- true
	p.decision = nil
	log.Info().Str("module", "core.registry").Str("user", string(id)).Msg("join approved")
	return p.endpoint, r.ListActive(), nil
}

// Reject drops a pending id and returns its endpoint so the caller can
// push the refusal before letting go of it.
func (r *Registry) Reject(id domain.UserID) (Endpoint, error) {
	p, ok := r.members[id]
	if !ok || p.admission != domain.AdmissionPending {
		return nil, domain.ErrUnknownPendingID
	}
	p.admission = domain.AdmissionRejected
	p.decision <- false
	p.decision = nil
	ep := p.endpoint
	p.endpoint = nil
	log.Info().Str("module", "core.registry").Str("user", string(id)).Msg("join refused")
	return ep, nil
}

// Remove detaches an id, kicked or leaving on its own. Idempotent: removing
// an unknown or already-removed id signals that nothing further is owed.
// A still-pending id is resolved as refused so its waiter never hangs.
func (r *Registry) Remove(id domain.UserID) (Endpoint, []domain.UserID, bool) {
	p, ok := r.members[id]
	if !ok {
		return nil, nil, false
	}
	switch p.admission {
	case domain.AdmissionPending:
		p.admission = domain.AdmissionRemoved
		p.decision <- false
		p.decision = nil
		ep := p.endpoint
		p.endpoint = nil
		log.Info().Str("module", "core.registry").Str("user", string(id)).Msg("pending user removed")
		return ep, nil, true
	case domain.AdmissionActive:
		p.admission = domain.AdmissionRemoved
		for i, uid := range r.order {
			if uid == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		ep := p.endpoint
		p.endpoint = nil
		log.Info().Str("module", "core.registry").Str("user", string(id)).Msg("active user removed")
		return ep, r.ListActive(), true
	default:
		return nil, nil, false
	}
}

// ListActive returns the active ids, manager first then admission order.
func (r *Registry) ListActive() []domain.UserID {
	out := make([]domain.UserID, len(r.order))
	copy(out, r.order)
	return out
}

// ActiveEndpoints snapshots the fan-out targets in membership order.
func (r *Registry) ActiveEndpoints() []ActiveEndpoint {
	out := make([]ActiveEndpoint, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, ActiveEndpoint{ID: id, Endpoint: r.members[id].endpoint})
	}
	return out
}

func (r *Registry) ManagerID() domain.UserID { return r.managerID }

func (r *Registry) ManagerEndpoint() (Endpoint, bool) {
	if !r.hasManager {
		return nil, false
	}
	p, ok := r.members[r.managerID]
	if !ok || p.admission != domain.AdmissionActive {
		return nil, false
	}
	return p.endpoint, true
}

func (r *Registry) IsManager(id domain.UserID) bool {
	return r.hasManager && id == r.managerID
}

func (r *Registry) IsActive(id domain.UserID) bool {
	p, ok := r.members[id]
	return ok && p.admission == domain.AdmissionActive
}

// DetachAll empties the membership on session close, resolving any pending
// waits as refused. The manager record stays so the single-manager rule
// holds for the process lifetime.
func (r *Registry) DetachAll() []ActiveEndpoint {
	eps := r.ActiveEndpoints()
	for _, p := range r.members {
		if p.admission == domain.AdmissionPending {
			p.decision <- false
			p.decision = nil
		}
		if p.admission == domain.AdmissionPending || p.admission == domain.AdmissionActive {
			p.admission = domain.AdmissionRemoved
		}
		p.endpoint = nil
	}
	r.order = nil
	return eps
}
