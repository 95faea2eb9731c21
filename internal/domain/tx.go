package domain

import "context"

// Transactor runs fn as one atomic unit of work. Repositories called with the
// ctx handed to fn take part in the transaction; if fn returns an error every
// write made through that ctx is rolled back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
