package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// Dispatcher turns raw client messages into replies.
// Apart from creating bindings it holds no mutable state.
type Dispatcher struct {
	directory core.Directory
	bindings  *Bindings
	validate  *validator.Validate
}

func NewDispatcher(directory core.Directory, bindings *Bindings) *Dispatcher {
	return &Dispatcher{
		directory: directory,
		bindings:  bindings,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handle never fails: every error, panics included, becomes an error reply.
func (d *Dispatcher) Handle(raw []byte, conn core.Conn) domain.Reply {
	var (
		reply domain.Reply
		err   error
	)
	var pc panics.Catcher
	pc.Try(func() {
		reply, err = d.dispatch(raw, conn)
	})
	if r := pc.Recovered(); r != nil {
		err = newError(KindInternal, r.AsError())
	}
	if err == nil {
		return reply
	}

	kind := KindOf(err)
	var ev *zerolog.Event
	if kind == KindInternal {
		ev = log.Error()
	} else {
		ev = log.Warn()
	}
	ev.Err(err).Str("module", "app.dispatcher").Str("conn", string(conn.ID())).Str("kind", kind.String()).Msg("command failed")
	return domain.Fail(kind.Message())
}

func (d *Dispatcher) dispatch(raw []byte, conn core.Conn) (domain.Reply, error) {
	cmd, err := d.parse(raw)
	if err != nil {
		return domain.Reply{}, err
	}
	log.Debug().Str("module", "app.dispatcher").Str("conn", string(conn.ID())).Str("action", string(cmd.Action)).Msg("command received")

	switch cmd.Action {
	case domain.ActionJoin:
		return d.join(conn, cmd.Parameter)
	case domain.ActionInfo:
		return d.Info(), nil
	case domain.ActionSelect:
		return d.selectOption(conn, cmd.Parameter)
	default:
		return domain.Reply{}, newError(KindUnknownAction, fmt.Errorf("action %q", cmd.Action))
	}
}

// parse decodes a command object. Keys match exactly, unlike struct
// decoding, and both fields must be JSON strings when present.
func (d *Dispatcher) parse(raw []byte) (domain.Command, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Command{}, newError(KindMalformedInput, err)
	}
	if fields == nil {
		return domain.Command{}, newError(KindMalformedInput, errors.New("not an object"))
	}
	rawAction, ok := fields["action"]
	if !ok {
		return domain.Command{}, newError(KindMalformedInput, errors.New("missing action"))
	}
	action, err := stringField("action", rawAction)
	if err != nil {
		return domain.Command{}, err
	}
	cmd := domain.Command{Action: domain.Action(action)}
	if rawParam, ok := fields["parameter"]; ok {
		if cmd.Parameter, err = stringField("parameter", rawParam); err != nil {
			return domain.Command{}, err
		}
	}
	if err := d.validate.Struct(cmd); err != nil {
		return domain.Command{}, newError(KindUnknownAction, err)
	}
	return cmd, nil
}

// stringField rejects null, which json.Unmarshal would leave as "".
func stringField(name string, raw json.RawMessage) (string, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", newError(KindMalformedInput, fmt.Errorf("%s is null", name))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", newError(KindMalformedInput, fmt.Errorf("%s: %w", name, err))
	}
	return s, nil
}

func (d *Dispatcher) join(conn core.Conn, game string) (domain.Reply, error) {
	id := conn.ID()
	if d.bindings.IsBound(id) {
		return domain.Reply{}, ErrDuplicateJoin
	}
	ctrl, err := d.directory.JoinGame(id, game)
	if err != nil {
		if errors.Is(err, core.ErrGameNotFound) {
			return domain.Reply{}, newError(KindNotFound, err)
		}
		return domain.Reply{}, newError(KindInternal, fmt.Errorf("join %q: %w", game, err))
	}
	if ctrl == nil {
		return domain.Reply{}, newError(KindInternal, fmt.Errorf("join %q: directory returned no controller", game))
	}
	// A concurrent join on the same connection may have won meanwhile;
	// the directory has no way to take the admission back.
	b, err := d.bindings.Create(conn, ctrl)
	if err != nil {
		return domain.Reply{}, err
	}
	ctrl.AddView(b.View())
	log.Info().Str("module", "app.dispatcher").Str("conn", string(id)).Str("game", game).Msg("joined")
	return domain.OK("Joined"), nil
}

// Info lists the directory's games in directory order.
func (d *Dispatcher) Info() domain.Reply {
	models := d.directory.AvailableModels()
	games := make([]domain.GameInfo, 0, len(models))
	for _, name := range models {
		games = append(games, domain.GameInfo{Name: name})
	}
	return domain.Reply{Status: domain.StatusOK, Games: games}
}

func (d *Dispatcher) selectOption(conn core.Conn, param string) (domain.Reply, error) {
	id := conn.ID()
	ctrl, ok := d.bindings.Get(id)
	if !ok {
		return domain.Reply{}, ErrNotJoined
	}
	choice, err := strconv.Atoi(strings.TrimSpace(param))
	if err != nil {
		return domain.Reply{}, newError(KindInvalidParameter, err)
	}
	if !ctrl.SetSelected(id, choice) {
		return domain.Reply{}, newError(KindEngineRejection, fmt.Errorf("choice %d", choice))
	}
	d.directory.Wake()
	return domain.Reply{Status: domain.StatusOK}, nil
}
