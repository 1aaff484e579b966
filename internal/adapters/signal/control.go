package signal

import (
	"time"

	"github.com/rs/zerolog/log"
)

// armLiveness sets the read limits and lets pongs extend the read deadline.
// Pings themselves come from app.Prober through TryPing.
func (ctl *SignalWSController) armLiveness(c *WsSignalConn) {
	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	ctl.extendReadDeadline(c)
	c.conn.SetPongHandler(func(string) error {
		log.Debug().Str("module", "signal").Str("conn", string(c.ID())).Msg("pong")
		ctl.extendReadDeadline(c)
		return nil
	})
}

func (ctl *SignalWSController) extendReadDeadline(c *WsSignalConn) {
	if err := c.conn.SetReadDeadline(time.Now().Add(ctl.Cfg.PongWait)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("set read deadline")
	}
}
