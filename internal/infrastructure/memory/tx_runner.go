package memory

import (
	"context"

	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones y restaura saldos y movimientos si fn falla.
type TxRunner struct {
	s *Store
}

// NewTxRunner crea el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	snap := r.s.snapshot()
	if err := fn(r.s.Stocks(), r.s.Movements()); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}
