package transaction

import (
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
)

// RepositoryAPI is the persistence collaborator for transactions. The core
// consumes it as a narrow lookup+save interface; its internals live in the
// postgres subpackage.
type RepositoryAPI interface {
	Save(tx *txmodel.Transaction) error
	Update(tx *txmodel.Transaction) error
	GetByID(id string) (*txmodel.Transaction, error)
	GetByIdempotencyKey(key string) (*txmodel.Transaction, error)
	Search(filter txmodel.SearchFilter) (*txmodel.Page, error)
}
