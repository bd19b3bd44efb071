// Package adapters binds the session core to concrete transports. The
// websocket protocol is a JSON envelope per message, dispatched on "type",
// mirroring the inbound operation table and the outbound push capability.
package adapters

// inbound envelope; unused fields stay empty for most types.
type inbound struct {
	Type    string `json:"type"`
	User    string `json:"user,omitempty"`    // register
	Manager bool   `json:"manager,omitempty"` // register
	Target  string `json:"target,omitempty"`  // approve, refuse, kick
	Payload string `json:"payload,omitempty"` // canvas
	Message string `json:"message,omitempty"` // chat
	Board   string `json:"board,omitempty"`   // open, save
}

type eventMsg struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

type membershipMsg struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type chatMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type decisionMsg struct {
	Type     string `json:"type"`
	Approved bool   `json:"approved"`
}

type joinRequestMsg struct {
	Type      string `json:"type"`
	Applicant string `json:"applicant"`
}

type noticeMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type stateMsg struct {
	Type    string   `json:"type"`
	Actions []string `json:"actions"`
}

type simpleMsg struct {
	Type string `json:"type"`
}

type errorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
