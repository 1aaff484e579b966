package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind_Messages(t *testing.T) {
	cases := map[ErrorKind]string{
		KindMalformedInput:   "Invalid JSON message!",
		KindUnknownAction:    "Invalid action!",
		KindDuplicateJoin:    "Already joined a game",
		KindNotFound:         "Game not found",
		KindNotJoined:        "Not joined a game",
		KindInvalidParameter: "Invalid parameter!",
		KindEngineRejection:  "Selection rejected",
		KindRateLimited:      "Too many requests!",
		KindInternal:         "Internal Server Error",
		ErrorKind(99):        "Internal Server Error",
	}
	for kind, msg := range cases {
		assert.Equal(t, msg, kind.Message(), "kind %s", kind)
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("join: %w", newError(KindNotFound, cause))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrInternal)

	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Equal(t, "not_found: boom", newError(KindNotFound, cause).Error())
	assert.Equal(t, "duplicate_join", ErrDuplicateJoin.Error())
}
