package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/dkeye/gamegate/internal/app"
	"github.com/dkeye/gamegate/internal/config"
	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type SignalWSController struct {
	Orch    *app.Orchestrator
	Cfg     config.WSConfig
	Limiter *RateLimiter
}

func NewSignalWSController(orch *app.Orchestrator, cfg config.WSConfig, limiter *RateLimiter) *SignalWSController {
	return &SignalWSController{
		Orch:    orch,
		Cfg:     cfg,
		Limiter: limiter,
	}
}

// outbound is one queued write. The write pump is the only socket writer,
// so replies, pushes and pings never race on the connection.
type outbound struct {
	ping bool
	data core.Frame
}

// WsSignalConn implements core.Conn over a gorilla WebSocket.
type WsSignalConn struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan outbound

	mu     sync.RWMutex
	closed bool
}

var _ core.Conn = (*WsSignalConn)(nil)

func newWsSignalConn(id domain.ConnID, ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		id:   id,
		conn: ws,
		send: make(chan outbound, buffer),
	}
}

func (c *WsSignalConn) ID() domain.ConnID { return c.id }

func (c *WsSignalConn) TrySend(f core.Frame) error {
	return c.enqueue(outbound{data: f})
}

func (c *WsSignalConn) TryPing() error {
	return c.enqueue(outbound{ping: true})
}

func (c *WsSignalConn) enqueue(m outbound) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- m:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until either
// side closes it or ctx is done.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWsSignalConn(domain.NewConnID(), ws, ctl.Cfg.SendBuffer)
	log.Info().Str("module", "signal").Str("conn", string(conn.ID())).Str("client", token).Msg("new WS connection")
	ctl.Orch.OnConnect(conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}
