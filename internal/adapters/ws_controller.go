package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dnelfhmi/real-time-whiteboard/internal/core"
	"github.com/dnelfhmi/real-time-whiteboard/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// BoardWSController serves one websocket per participant and translates
// envelopes into session operations.
type BoardWSController struct {
	Session   *core.Session
	ReadLimit int64
}

func NewBoardWSController(session *core.Session, readLimit int64) *BoardWSController {
	return &BoardWSController{Session: session, ReadLimit: readLimit}
}

// HandleBoard upgrades the connection and runs the read loop. The first
// envelope must be a register; everything after that is a session
// operation issued by the registered user.
func (ctl *BoardWSController) HandleBoard(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	log.Info().Str("module", "adapters.ws").Str("token", token).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := NewWsBoardConn(ws)
	ctx, cancel := context.WithCancel(ctx)

	go conn.WritePump(ctx)
	go ctl.readPump(ctx, cancel, conn)
}

func (ctl *BoardWSController) readPump(ctx context.Context, cancel context.CancelFunc, conn *WsBoardConn) {
	var user domain.UserID
	defer func() {
		if user != "" {
			if err := ctl.Session.Deregister(user); err != nil && !errors.Is(err, domain.ErrSessionClosed) {
				log.Warn().Err(err).Str("module", "adapters.ws").Str("user", string(user)).Msg("deregister on disconnect")
			}
		}
		cancel()
		conn.Close()
		log.Info().Str("module", "adapters.ws").Str("user", string(user)).Msg("readPump closing")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := conn.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "adapters.ws").Str("user", string(user)).Msg("readPump read error")
				return
			}
			var env inbound
			if err := json.Unmarshal(data, &env); err != nil {
				ctl.sendError(conn, "bad json")
				continue
			}
			if user == "" {
				if env.Type != "register" {
					ctl.sendError(conn, "register first")
					continue
				}
				user = ctl.handleRegister(ctx, conn, env)
				continue
			}
			if env.Type == "leave" {
				return
			}
			ctl.dispatch(conn, user, env)
		}
	}
}

// handleRegister attaches the connection as an endpoint. A regular user is
// told it is pending; the decision arrives later as a push.
func (ctl *BoardWSController) handleRegister(ctx context.Context, conn *WsBoardConn, env inbound) domain.UserID {
	id := domain.UserID(env.User)
	ep := NewEndpoint(conn)
	decision, err := ctl.Session.RegisterUser(id, ep, env.Manager)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return ""
	}
	if decision == nil {
		ctl.sendJSON(conn, simpleMsg{Type: "registered"})
		return id
	}
	ctl.sendJSON(conn, simpleMsg{Type: "pending"})
	go func() {
		approved, err := ctl.Session.AwaitDecision(ctx, decision)
		if err != nil {
			log.Info().Err(err).Str("module", "adapters.ws").Str("user", string(id)).Msg("approval wait cancelled")
			return
		}
		if !approved {
			conn.Close()
		}
	}()
	return id
}

func (ctl *BoardWSController) dispatch(conn *WsBoardConn, user domain.UserID, env inbound) {
	var err error
	switch env.Type {
	case "canvas":
		err = ctl.Session.CanvasAction(user, env.Payload)
	case "clear":
		err = ctl.Session.ClearCanvas(user)
	case "chat":
		err = ctl.Session.SendMessage(user, env.Message)
	case "approve":
		err = ctl.Session.ApproveClient(user, domain.UserID(env.Target))
	case "refuse":
		err = ctl.Session.RefuseClient(user, domain.UserID(env.Target))
	case "kick":
		err = ctl.Session.KickUser(user, domain.UserID(env.Target))
	case "new":
		err = ctl.Session.CreateNewBoard(user)
	case "open":
		err = ctl.Session.OpenBoard(user, env.Board)
	case "save":
		err = ctl.Session.SaveBoard(user, env.Board)
	case "close":
		err = ctl.Session.CloseBoard(user)
	case "state":
		var actions []string
		actions, err = ctl.Session.SessionState(user)
		if err == nil {
			ctl.sendJSON(conn, stateMsg{Type: "state", Actions: actions})
		}
	case "ping":
		ctl.sendJSON(conn, simpleMsg{Type: "pong"})
	default:
		log.Warn().Str("module", "adapters.ws").Str("type", env.Type).Msg("unknown envelope")
		ctl.sendError(conn, "unknown type: "+env.Type)
		return
	}
	if err != nil {
		ctl.sendError(conn, err.Error())
	}
}

func (ctl *BoardWSController) sendJSON(conn *WsBoardConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("sendJSON marshal")
		return
	}
	_ = conn.TrySend(b)
}

func (ctl *BoardWSController) sendError(conn *WsBoardConn, msg string) {
	ctl.sendJSON(conn, errorMsg{Type: "error", Error: msg})
}
