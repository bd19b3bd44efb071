package adapters

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnelfhmi/real-time-whiteboard/internal/core"
	"github.com/dnelfhmi/real-time-whiteboard/internal/domain"
	"github.com/dnelfhmi/real-time-whiteboard/internal/store"
)

func newBoardController(t *testing.T) *BoardWSController {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewBoardWSController(core.NewSession(fs), 0)
}

// drainEnvelopes pops every queued envelope off the send queue.
func drainEnvelopes(t *testing.T, conn *WsBoardConn) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		select {
		case data := <-conn.send:
			var m map[string]any
			require.NoError(t, json.Unmarshal(data, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func envelopeOfType(t *testing.T, msgs []map[string]any, typ string) map[string]any {
	t.Helper()
	for _, m := range msgs {
		if m["type"] == typ {
			return m
		}
	}
	t.Fatalf("no %q envelope in %v", typ, msgs)
	return nil
}

func registerManagerConn(t *testing.T, ctl *BoardWSController, id string) *WsBoardConn {
	t.Helper()
	conn := NewWsBoardConn(nil)
	user := ctl.handleRegister(context.Background(), conn, inbound{Type: "register", User: id, Manager: true})
	require.Equal(t, domain.UserID(id), user)
	drainEnvelopes(t, conn)
	return conn
}

func TestHandleRegisterManagerAndPending(t *testing.T) {
	t.Parallel()

	ctl := newBoardController(t)
	manager := NewWsBoardConn(nil)
	user := ctl.handleRegister(context.Background(), manager, inbound{Type: "register", User: "alice", Manager: true})
	assert.Equal(t, domain.UserID("alice"), user)
	msgs := drainEnvelopes(t, manager)
	envelopeOfType(t, msgs, "registered")
	envelopeOfType(t, msgs, "membership")

	// a second manager is turned away with an error envelope
	second := NewWsBoardConn(nil)
	user = ctl.handleRegister(context.Background(), second, inbound{Type: "register", User: "mallory", Manager: true})
	assert.Empty(t, user)
	assert.Contains(t, envelopeOfType(t, drainEnvelopes(t, second), "error")["error"], "manager")

	// a regular user is told it is pending and the manager is notified
	bob := NewWsBoardConn(nil)
	user = ctl.handleRegister(context.Background(), bob, inbound{Type: "register", User: "bob", Manager: false})
	assert.Equal(t, domain.UserID("bob"), user)
	envelopeOfType(t, drainEnvelopes(t, bob), "pending")
	req := envelopeOfType(t, drainEnvelopes(t, manager), "join_request")
	assert.Equal(t, "bob", req["applicant"])
}

func TestDispatchCanvasChatClearState(t *testing.T) {
	t.Parallel()

	ctl := newBoardController(t)
	manager := registerManagerConn(t, ctl, "alice")

	payload := "DRAW Line 0 0 1 1 #000000"
	ctl.dispatch(manager, "alice", inbound{Type: "canvas", Payload: payload})
	assert.Equal(t, payload, envelopeOfType(t, drainEnvelopes(t, manager), "event")["payload"])

	ctl.dispatch(manager, "alice", inbound{Type: "chat", Message: "hi"})
	assert.Equal(t, "hi", envelopeOfType(t, drainEnvelopes(t, manager), "chat")["message"])

	ctl.dispatch(manager, "alice", inbound{Type: "state"})
	assert.Equal(t, []any{payload}, envelopeOfType(t, drainEnvelopes(t, manager), "state")["actions"])

	ctl.dispatch(manager, "alice", inbound{Type: "clear"})
	envelopeOfType(t, drainEnvelopes(t, manager), "cleared")

	ctl.dispatch(manager, "alice", inbound{Type: "state"})
	assert.Empty(t, envelopeOfType(t, drainEnvelopes(t, manager), "state")["actions"])
}

func TestDispatchApproveAndKick(t *testing.T) {
	t.Parallel()

	ctl := newBoardController(t)
	manager := registerManagerConn(t, ctl, "alice")

	bob := NewWsBoardConn(nil)
	user := ctl.handleRegister(context.Background(), bob, inbound{Type: "register", User: "bob", Manager: false})
	require.Equal(t, domain.UserID("bob"), user)
	drainEnvelopes(t, bob)
	drainEnvelopes(t, manager)

	ctl.dispatch(manager, "alice", inbound{Type: "approve", Target: "bob"})
	bobMsgs := drainEnvelopes(t, bob)
	assert.Equal(t, true, envelopeOfType(t, bobMsgs, "decision")["approved"])
	assert.Equal(t, []any{"alice", "bob"}, envelopeOfType(t, bobMsgs, "membership")["users"])
	envelopeOfType(t, drainEnvelopes(t, manager), "membership")

	ctl.dispatch(manager, "alice", inbound{Type: "kick", Target: "bob"})
	bobMsgs = drainEnvelopes(t, bob)
	envelopeOfType(t, bobMsgs, "notice")
	envelopeOfType(t, bobMsgs, "disconnect")
	assert.Equal(t, []any{"alice"}, envelopeOfType(t, drainEnvelopes(t, manager), "membership")["users"])
}

func TestDispatchErrorEnvelopes(t *testing.T) {
	t.Parallel()

	ctl := newBoardController(t)
	manager := registerManagerConn(t, ctl, "alice")

	bob := NewWsBoardConn(nil)
	user := ctl.handleRegister(context.Background(), bob, inbound{Type: "register", User: "bob", Manager: false})
	require.Equal(t, domain.UserID("bob"), user)
	require.NoError(t, ctl.Session.ApproveClient("alice", "bob"))
	drainEnvelopes(t, bob)

	// manager-only operation invoked by a regular user
	ctl.dispatch(bob, "bob", inbound{Type: "close"})
	assert.Contains(t, envelopeOfType(t, drainEnvelopes(t, bob), "error")["error"], "manager")

	// payload that would corrupt the snapshot
	ctl.dispatch(bob, "bob", inbound{Type: "canvas", Payload: "DRAW\nLine"})
	assert.Contains(t, envelopeOfType(t, drainEnvelopes(t, bob), "error")["error"], "newline")

	// unknown envelope type
	ctl.dispatch(manager, "alice", inbound{Type: "bogus"})
	assert.Contains(t, envelopeOfType(t, drainEnvelopes(t, manager), "error")["error"], "unknown type")
}
