package core

import "github.com/dnelfhmi/real-time-whiteboard/internal/domain"

// Endpoint is the push capability for one participant.
// Owned by the adapter; the adapter must close its transport resources.
//
// Every Deliver method must return quickly: implementations enqueue and
// report backpressure as an error instead of blocking the caller. The
// session holds its lock while fanning out, so a blocking endpoint would
// stall the whole board.
type Endpoint interface {
	// DeliverEvent pushes one canvas action payload.
	DeliverEvent(payload string) error
	// DeliverClear tells the client to wipe its canvas.
	DeliverClear() error
	// DeliverMembership pushes the full active-user list, manager first.
	DeliverMembership(users []domain.UserID) error
	// DeliverChat pushes an ephemeral chat message.
	DeliverChat(message string) error
	// DeliverDecision resolves this participant's join request.
	DeliverDecision(approved bool) error
	// DeliverJoinRequest tells the manager that applicant awaits a decision.
	DeliverJoinRequest(applicant domain.UserID) error
	// DeliverNotice pushes a human-readable notice (kick reason, closing).
	DeliverNotice(message string) error
	// DeliverDisconnect tells the client it has been detached from the session.
	DeliverDisconnect() error
}
