package usecase

import (
	"context"
	"fmt"
	"sync"
)

// DueAction names one lifecycle action the trigger may find due.
type DueAction string

const (
	ActionFinalizeRound    DueAction = "finalize_round"
	ActionCompleteExchange DueAction = "complete_exchange"
	ActionEnableEmergency  DueAction = "enable_emergency"
)

// ActionHandler executes one due action against a campaign.
type ActionHandler func(ctx context.Context, campaignID string) error

// ActionDispatcher routes due lifecycle actions to their owning use case.
// Registration happens once at composition time; execution is the trigger's
// only way in, no other entry point finalizes rounds or flips phases
// implicitly.
type ActionDispatcher struct {
	mu       sync.RWMutex
	handlers map[DueAction]ActionHandler
}

func NewActionDispatcher() *ActionDispatcher {
	return &ActionDispatcher{
		handlers: make(map[DueAction]ActionHandler),
	}
}

func (d *ActionDispatcher) Register(action DueAction, handler ActionHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = handler
}

func (d *ActionDispatcher) Execute(ctx context.Context, action DueAction, campaignID string) error {
	d.mu.RLock()
	handler, ok := d.handlers[action]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("action handler %s not registered", action)
	}
	return handler(ctx, campaignID)
}
