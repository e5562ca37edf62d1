// Package repokit holds the sql seams and helpers repos are written against
package repokit

import (
	"context"

	"jobacq/internal/platform/store"
)

// Queryer is the read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows is a result set
	Rows = store.Rows

	// Row is a single row
	Row = store.Row

	// CommandTag is a write result
	CommandTag = store.CommandTag
)

// WithTx binds b inside a transaction on tx and runs fn with the bound repo
func WithTx[T any](ctx context.Context, tx TxRunner, b Binder[T], fn func(repo T) error) error {
	return tx.Tx(ctx, func(q Queryer) error { return fn(b.Bind(q)) })
}
