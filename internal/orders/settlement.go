package orders

import (
	"context"
	"fmt"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
)

// settleStock deducts every item of the order from product stock. The caller
// must run it inside a transaction together with the status update.
//
// The stock_deducted claim is a conditional flip, so two settlements of the
// same order cannot both proceed. Any short item fails the whole transaction
// and the claim rolls back with it.
func settleStock(ctx context.Context, repo *Repository, order *models.Order) error {
	claimed, err := repo.ClaimStockDeduction(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming stock settlement")
	}
	if !claimed {
		// already settled by a committed transaction
		return nil
	}

	for _, item := range order.Items {
		ok, err := repo.DeductProductStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deducting stock")
		}
		if !ok {
			title, titleErr := repo.ProductTitle(ctx, item.ProductID)
			if titleErr != nil || title == "" {
				title = item.ProductID.String()
			}
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("insufficient stock for %s", title))
		}
	}
	return nil
}
