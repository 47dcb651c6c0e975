package rewards

import (
	"fmt"
	"strings"
	"sync"
)

// Action is one reward effect inside a collection. The core never performs
// the effect itself; a granter collaborator interprets the action.
type Action interface {
	Type() string
}

// ActionConstructor builds an action from its raw config map.
type ActionConstructor func(raw map[string]any) (Action, error)

// ActionRegistry maps action type tags to constructors. Unknown tags are a
// config error at load time, never a runtime failure.
type ActionRegistry struct {
	mu    sync.RWMutex
	ctors map[string]ActionConstructor
}

func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{ctors: make(map[string]ActionConstructor)}
}

// DefaultActionRegistry registers the built-in action types.
func DefaultActionRegistry() *ActionRegistry {
	r := NewActionRegistry()
	r.Register("command", newCommandAction)
	r.Register("message", newMessageAction)
	r.Register("broadcast", newBroadcastAction)
	r.Register("item", newItemAction)
	return r
}

func (r *ActionRegistry) Register(typeTag string, c ActionConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[strings.ToLower(typeTag)] = c
}

func (r *ActionRegistry) IsRegistered(typeTag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[strings.ToLower(typeTag)]
	return ok
}

// Build constructs an action from a raw config entry. The entry's "type"
// field selects the constructor.
func (r *ActionRegistry) Build(raw map[string]any) (Action, error) {
	typeTag, _ := raw["type"].(string)
	if typeTag == "" {
		return nil, fmt.Errorf("reward action missing type tag")
	}
	r.mu.RLock()
	ctor, ok := r.ctors[strings.ToLower(typeTag)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unregistered reward action type %q", typeTag)
	}
	return ctor(raw)
}

// CommandAction runs a host command with the user's name substituted in.
type CommandAction struct {
	Command string
}

func (CommandAction) Type() string { return "command" }

func newCommandAction(raw map[string]any) (Action, error) {
	cmd, _ := raw["command"].(string)
	if cmd == "" {
		return nil, fmt.Errorf("command action missing command")
	}
	return CommandAction{Command: cmd}, nil
}

// MessageAction sends a chat message to the user.
type MessageAction struct {
	Message string
}

func (MessageAction) Type() string { return "message" }

func newMessageAction(raw map[string]any) (Action, error) {
	msg, _ := raw["message"].(string)
	if msg == "" {
		return nil, fmt.Errorf("message action missing message")
	}
	return MessageAction{Message: msg}, nil
}

// BroadcastAction announces a message to every connected user.
type BroadcastAction struct {
	Message string
}

func (BroadcastAction) Type() string { return "broadcast" }

func newBroadcastAction(raw map[string]any) (Action, error) {
	msg, _ := raw["message"].(string)
	if msg == "" {
		return nil, fmt.Errorf("broadcast action missing message")
	}
	return BroadcastAction{Message: msg}, nil
}

// ItemAction gives the user an item stack.
type ItemAction struct {
	Item   string
	Amount int
}

func (ItemAction) Type() string { return "item" }

func newItemAction(raw map[string]any) (Action, error) {
	item, _ := raw["item"].(string)
	if item == "" {
		return nil, fmt.Errorf("item action missing item")
	}
	amount := 1
	switch v := raw["amount"].(type) {
	case int:
		amount = v
	case float64:
		amount = int(v)
	}
	if amount < 1 {
		return nil, fmt.Errorf("item action amount must be >= 1")
	}
	return ItemAction{Item: item, Amount: amount}, nil
}
