package services

import (
	"context"
	"encoding/json"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/internal/infrastructure/buffer"
	"github.com/momentumhq/backend/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        task.ID,
		UserID:    task.UserID,
		Entity:    buffer.EntityTask,
		Operation: operation,
		Data:      payload,
		Priority:  4,
	}
	return b.processor.BufferOperation(ctx, item)
}

// BufferMomentum queues the aggregate half of a momentum update. The daily
// stat increment is not buffered; it either landed or the request failed.
func (b *BufferBridge) BufferMomentum(ctx context.Context, userID string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    userID,
		Entity:    buffer.EntityMomentum,
		Operation: buffer.OperationReplay,
		Data:      payload,
		Priority:  2,
	}
	return b.processor.store.Enqueue(item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
