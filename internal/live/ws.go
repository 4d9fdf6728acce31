package live

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ziwei/internal/kb"
	"ziwei/internal/render"
	"ziwei/internal/session"
	"ziwei/pkg/logger"
)

const maxMessageSize = 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ClientMessage is what the page sends: select (with index), next or prev.
type ClientMessage struct {
	Type  string `json:"type"`
	Index *int   `json:"index,omitempty"`
}

type ServerMessage struct {
	Type    string        `json:"type"`
	Session string        `json:"session,omitempty"`
	Panel   *render.Panel `json:"panel,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type Handler struct {
	Hub *Hub
	Ctl *session.Controller
	KB  *kb.Store
}

// NewHandler wires the hub to the controller: every selection change is
// pushed to the session's sockets.
func NewHandler(hub *Hub, ctl *session.Controller, store *kb.Store) *Handler {
	h := &Handler{Hub: hub, Ctl: ctl, KB: store}
	ctl.Subscribe(func(id string, st session.State) {
		if msg, ok := h.palace(st); ok {
			hub.BroadcastJSON(id, msg)
		}
	})
	return h
}

func (h *Handler) palace(st session.State) (ServerMessage, bool) {
	if !st.HasChart() || st.Selected < 0 {
		return ServerMessage{}, false
	}
	p, err := render.Detail(st.Chart, st.Annotations, h.KB.Current(), st.Selected)
	if err != nil {
		return ServerMessage{}, false
	}
	return ServerMessage{Type: "palace", Panel: &p}, true
}

// Serve handles GET /ws. The session comes from the session cookie; a
// session query parameter is accepted only when it names the same session.
func (h *Handler) Serve(c *gin.Context) {
	id, err := c.Cookie(session.CookieName)
	if err != nil || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session cookie required"})
		return
	}
	if q := c.Query("session"); q != "" && q != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "session mismatch"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log := logger.Named("live").With("session", id)
	ws.SetReadLimit(maxMessageSize)

	h.Hub.Add(id, ws)
	log.Debugw("socket connected", "remote", c.ClientIP())
	defer func() {
		h.Hub.Remove(id, ws)
		log.Debugw("socket disconnected")
	}()

	if err := h.Hub.Send(id, ws, ServerMessage{Type: "welcome", Session: id}); err != nil {
		return
	}
	if msg, ok := h.palace(h.Ctl.State(id)); ok {
		if err := h.Hub.Send(id, ws, msg); err != nil {
			return
		}
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugw("read failed", "err", err)
			}
			return
		}
		var in ClientMessage
		if err := json.Unmarshal(data, &in); err != nil {
			in.Type = ""
		}

		var opErr error
		switch in.Type {
		case "select":
			if in.Index == nil {
				opErr = session.ErrInvalidInput
				break
			}
			_, opErr = h.Ctl.Select(id, *in.Index)
		case "next":
			_, opErr = h.Ctl.Next(id)
		case "prev":
			_, opErr = h.Ctl.Prev(id)
		default:
			opErr = session.ErrInvalidInput
		}
		if opErr != nil {
			if err := h.Hub.Send(id, ws, ServerMessage{Type: "error", Error: session.Message(opErr)}); err != nil {
				return
			}
		}
	}
}
