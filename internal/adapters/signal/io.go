package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/gamegate/internal/app"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(c.ID())).Msg("writePump ctx done")
			return
		case m, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(c.ID())).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			msgType, data := websocket.TextMessage, []byte(m.data)
			if m.ping {
				msgType, data = websocket.PingMessage, nil
			}
			if err := c.conn.WriteMessage(msgType, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.ID())).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Limiter.Forget(c.ID())
		ctl.Orch.OnDisconnect(c.ID())
	}()

	ctl.armLiveness(c)
	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("readPump read error")
			} else {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("readPump closed")
			}
			return
		}
		ctl.extendReadDeadline(c)
		ctl.handleMessage(c, data)
	}
}

func (ctl *SignalWSController) handleMessage(c *WsSignalConn, data []byte) {
	if !ctl.Limiter.Allow(c.ID()) {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("rate limited")
		ctl.sendJSON(c, domain.Fail(app.KindRateLimited.Message()))
		return
	}
	ctl.sendJSON(c, ctl.Orch.OnMessage(c, data))
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("reply dropped")
	}
}
