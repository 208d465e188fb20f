package registry

import (
	"context"
	"time"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// BorrowParams holds the inputs for lending an asset out
type BorrowParams struct {
	BorrowerID      int64
	PlannedReturnAt time.Time
	Note            string
}

// BorrowAsset lends an asset out: creates the loan and flips the asset to
// on_loan, audited, in one transaction. An asset can carry at most one
// active loan; a second borrow is a conflict.
func (r *Registry) BorrowAsset(ctx context.Context, assetID int64, p BorrowParams, actorID int64) (*schema.Loan, error) {
	if p.BorrowerID == 0 {
		return nil, domain.NewValidationError("borrower_id", "must be set")
	}
	if p.PlannedReturnAt.IsZero() {
		return nil, domain.NewValidationError("planned_return_at", "must be set")
	}

	var loan *schema.Loan
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		asset, err := tx.GetAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		if asset.DeletedAt != nil {
			return domain.NewValidationError("asset_id", "asset is retired")
		}

		active, err := tx.GetActiveLoanForAsset(ctx, assetID)
		if err != nil {
			return err
		}
		if active != nil {
			return domain.NewConflictError("loan", "asset already has an active loan")
		}

		var createdBy *int64
		if actorID != 0 {
			createdBy = &actorID
		}

		now := time.Now()
		loan = &schema.Loan{
			AssetID:         assetID,
			BorrowerID:      p.BorrowerID,
			BorrowedAt:      now,
			PlannedReturnAt: p.PlannedReturnAt,
			Note:            p.Note,
			CreatedBy:       createdBy,
		}
		// The partial unique index backstops the check above under races
		if err := tx.CreateLoan(ctx, loan); err != nil {
			return err
		}

		before, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		asset.Status = domain.AssetStatusOnLoan
		if actorID != 0 {
			asset.UpdatedBy = &actorID
		}
		if err := tx.SaveAsset(ctx, asset); err != nil {
			return err
		}

		after, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		return recordAssetAudit(ctx, tx, asset, "loan", diffSnapshots(before, after), actorID, now)
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// ReturnLoan closes an active loan and restores the asset to active status,
// audited, in one transaction. Returning a closed loan is a conflict.
func (r *Registry) ReturnLoan(ctx context.Context, loanID int64, actorID int64) (*schema.Loan, error) {
	var loan *schema.Loan
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		loan, err = tx.GetLoanByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return domain.ErrLoanNotFound
		}
		if loan.ReturnedAt != nil {
			return domain.NewConflictError("loan", "loan already returned")
		}

		now := time.Now()
		loan.ReturnedAt = &now
		if err := tx.SaveLoan(ctx, loan); err != nil {
			return err
		}

		asset, err := tx.GetAssetForUpdate(ctx, loan.AssetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}

		before, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		asset.Status = domain.AssetStatusActive
		if actorID != 0 {
			asset.UpdatedBy = &actorID
		}
		if err := tx.SaveAsset(ctx, asset); err != nil {
			return err
		}

		after, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		return recordAssetAudit(ctx, tx, asset, "return", diffSnapshots(before, after), actorID, now)
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// ListLoans returns loans, optionally scoped to one asset, newest first
func (r *Registry) ListLoans(ctx context.Context, assetID *int64) ([]*schema.Loan, error) {
	return r.store.ListLoans(ctx, assetID)
}
