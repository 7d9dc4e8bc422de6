package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/view"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
	// sendBuffer is the number of frames queued per client. A client that
	// falls further behind misses frames; the next one supersedes them.
	sendBuffer = 8
)

// Drag message types sent by the page.
const (
	msgStart = "start"
	msgDrag  = "drag"
	msgEnd   = "end"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// inbound is a pointer gesture. X and Y are plot coordinates, inside the
// margins. A start without an id picks the node under the pointer.
type inbound struct {
	Type string  `json:"type"`
	ID   string  `json:"id,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// outbound messages: "hello" once, "frame" per tick, "grab" when a start
// resolved its subject, "error" for rejected gestures.
type outbound struct {
	Type    string      `json:"type"`
	Client  string      `json:"client,omitempty"`
	ID      string      `json:"id,omitempty"`
	Frame   *view.Frame `json:"frame,omitempty"`
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	// drags holds the node ids this client is dragging. Only the read
	// goroutine touches it.
	drags map[string]bool
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// queue sends data without blocking; it reports false if the buffer is full.
func (c *client) queue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

func newHub(logger *log.Logger) *hub {
	return &hub{clients: make(map[*client]struct{}), logger: logger}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcastFrame runs on the loop goroutine and must not block.
func (h *hub) broadcastFrame(f view.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}
	data, err := json.Marshal(outbound{Type: "frame", Frame: &f})
	if err != nil {
		h.logger.Error("encode frame", "error", err)
		return
	}
	for c := range h.clients {
		c.queue(data)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{
		id:    uuid.NewString(),
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
		drags: make(map[string]bool),
	}

	var first view.Frame
	if err := s.submit(r.Context(), func() { first = s.view.Frame() }); err != nil {
		conn.Close()
		return
	}
	c.queue(mustEncode(outbound{Type: "hello", Client: c.id}))
	c.queue(mustEncode(outbound{Type: "frame", Frame: &first}))

	s.hub.add(c)
	s.logger.Debug("client connected", "client", c.id, "clients", s.hub.count())

	go s.writePump(c)
	s.readPump(c)

	s.hub.remove(c)
	c.close()
	s.releaseDrags(c)
	s.logger.Debug("client disconnected", "client", c.id, "clients", s.hub.count())
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Server) readPump(c *client) {
	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read", "client", c.id, "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		id, err := s.gesture(ctx, c, msg)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			c.queue(mustEncode(outbound{Type: "error", ID: msg.ID, Code: code, Message: errors.UserMessage(err)}))
			continue
		}
		if msg.Type == msgStart {
			c.queue(mustEncode(outbound{Type: "grab", ID: id}))
		}
	}
}

// gesture applies one drag message on the loop goroutine and returns the
// node id it applied to.
func (s *Server) gesture(ctx context.Context, c *client, msg inbound) (string, error) {
	id := msg.ID
	var err error
	switch msg.Type {
	case msgStart:
		serr := s.submit(ctx, func() {
			if id == "" {
				n := s.view.Subject(msg.X, msg.Y)
				if n == nil {
					err = errors.New(errors.ErrCodeNotFound, "no node at (%g, %g)", msg.X, msg.Y)
					return
				}
				id = n.ID
			}
			err = s.view.DragStart(id)
		})
		if serr != nil {
			return "", serr
		}
		if err == nil {
			c.drags[id] = true
		}
	case msgDrag:
		if !c.drags[id] {
			return "", errors.New(errors.ErrCodeInvalidInput, "no drag of %q in progress", id)
		}
		if serr := s.submit(ctx, func() { err = s.view.Drag(id, msg.X, msg.Y) }); serr != nil {
			return "", serr
		}
	case msgEnd:
		if !c.drags[id] {
			return "", errors.New(errors.ErrCodeInvalidInput, "no drag of %q in progress", id)
		}
		if serr := s.submit(ctx, func() { err = s.view.DragEnd(id) }); serr != nil {
			return "", serr
		}
		delete(c.drags, id)
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
	}
	return id, err
}

// releaseDrags ends the gestures of a client that went away so the
// simulation can cool down again.
func (s *Server) releaseDrags(c *client) {
	if len(c.drags) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	err := s.submit(ctx, func() {
		for id := range c.drags {
			s.view.DragEnd(id)
		}
	})
	if err != nil {
		s.logger.Debug("release drags", "client", c.id, "error", err)
	}
	clear(c.drags)
}

func mustEncode(m outbound) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return data
}
