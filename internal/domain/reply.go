package domain

type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// GameInfo is one entry of the info reply.
type GameInfo struct {
	Name string `json:"name"`
}

// Reply is the synchronous answer to exactly one Command.
// Games is only set for info, and is never null there.
type Reply struct {
	Status  Status     `json:"status"`
	Message string     `json:"message,omitempty"`
	Games   []GameInfo `json:"games,omitzero"`
}

func OK(message string) Reply {
	return Reply{Status: StatusOK, Message: message}
}

func Fail(message string) Reply {
	return Reply{Status: StatusError, Message: message}
}

// PushTypeState tags server-initiated state pushes. Replies never carry a
// type field, so clients can tell the two apart on the shared channel.
const PushTypeState = "state"

// StatePush is the unsolicited envelope around an engine snapshot.
type StatePush struct {
	Type    string `json:"type"`
	Version int64  `json:"version"`
	State   any    `json:"state"`
}
