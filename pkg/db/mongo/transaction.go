package mongo

import (
	"context"
	"errors"
	"fmt"

	apperrors "lodge/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

// NewTransactionManager runs transactions with snapshot reads and majority
// writes so that a check-then-insert sees every committed booking.
func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
		opts: options.Transaction().
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority()),
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, m.opts)
	return transactionError(err)
}

// transactionError keeps AppErrors raised inside the transaction and turns
// exhausted write conflicts into a retryable Conflict.
func transactionError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case isWriteConflict(err):
		return apperrors.Conflict("Booking was modified concurrently, please retry")
	default:
		return fmt.Errorf("transaction failed: %w", err)
	}
}

const (
	transientTransactionLabel = "TransientTransactionError"
	writeConflictCode         = 112
)

// isWriteConflict reports a transient transaction error that survived the
// driver's own retries.
func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel(transientTransactionLabel) || se.HasErrorCode(writeConflictCode)
	}
	return false
}
