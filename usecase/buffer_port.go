package usecase

import (
	"context"

	"github.com/momentumhq/backend/domain"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the offline buffer so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
	BufferMomentum(ctx context.Context, userID string, task *domain.Task) error
}
