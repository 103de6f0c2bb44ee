package memory

import (
	"context"
	"sync"

	"github.com/campus-dev/go-dining-bot/internal/domain/models"
)

// ChatStateRepository keeps per-chat conversation state in memory. The state
// only spans one prompt/response exchange, so nothing here survives restarts
// on purpose.
type ChatStateRepository struct {
	states map[int64]models.ChatState
	mu     sync.RWMutex
}

func NewChatStateRepository() *ChatStateRepository {
	return &ChatStateRepository{
		states: make(map[int64]models.ChatState),
	}
}

func (r *ChatStateRepository) GetState(ctx context.Context, chatID int64) (models.ChatState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.states[chatID]
	if !exists {
		return models.StateIdle, nil
	}

	return state, nil
}

func (r *ChatStateRepository) SetState(ctx context.Context, chatID int64, state models.ChatState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[chatID] = state

	return nil
}
