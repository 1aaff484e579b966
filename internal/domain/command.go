package domain

type Action string

const (
	ActionJoin   Action = "join"
	ActionInfo   Action = "info"
	ActionSelect Action = "select"
)

// Command is one inbound request. Parameter is optional for every action.
type Command struct {
	Action    Action `json:"action" validate:"required,oneof=join info select"`
	Parameter string `json:"parameter,omitempty"`
}
