package raseed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tfkr-ae/raseed/domain"
)

// CreateReceipt turns validated form data into a new Receipt with a fresh identifier,
// the current time and a receipt number derived from it. It does not validate or store.
func (app *App) CreateReceipt(data domain.ReceiptFormData) (*domain.Receipt, error) {
	id, err := app.NewID()
	if err != nil {
		return nil, fmt.Errorf("generating receipt id: %w", err)
	}
	return domain.NewReceipt(data, id, app.Clock().UTC()), nil
}

// Record creates a receipt from validated data and appends it to the repository.
func (app *App) Record(ctx context.Context, data domain.ReceiptFormData) (*domain.Receipt, error) {
	repo, err := app.repo()
	if err != nil {
		return nil, err
	}

	receipt, err := app.CreateReceipt(data)
	if err != nil {
		return nil, err
	}
	if err := repo.Append(ctx, receipt); err != nil {
		app.Logger.Error("storing receipt", "receipt_id", receipt.ID, "err", err)
		return nil, fmt.Errorf("storing receipt %s: %w", receipt.ID, err)
	}

	app.Metrics.ReceiptsCreated.Inc()
	app.Logger.Info("receipt created",
		"receipt_id", receipt.ID,
		"receipt_number", receipt.ReceiptNumber,
		"domains", len(receipt.Domains),
	)
	return receipt, nil
}

// Submit validates raw, then creates and stores the receipt. A validation failure is
// returned as domain.ValidationErrors and nothing is written.
func (app *App) Submit(ctx context.Context, raw domain.RawReceiptForm) (*domain.Receipt, error) {
	data, err := domain.Validate(raw)
	if err != nil {
		app.RejectSubmission(err)
		return nil, err
	}
	return app.Record(ctx, data)
}

// RejectSubmission records a submission that failed validation.
func (app *App) RejectSubmission(err error) {
	app.Metrics.ValidationFailures.Inc()
	app.Logger.Debug("receipt rejected", "err", err)
}

// Receipts returns every stored receipt in insertion order.
func (app *App) Receipts(ctx context.Context) ([]*domain.Receipt, error) {
	repo, err := app.repo()
	if err != nil {
		return nil, err
	}
	receipts, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading receipts: %w", err)
	}
	return receipts, nil
}

// Lookup finds a stored receipt by its textual id. Ids that do not parse are not found.
func (app *App) Lookup(ctx context.Context, id string) (*domain.Receipt, bool, error) {
	repo, err := app.repo()
	if err != nil {
		return nil, false, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		app.Metrics.Lookups.WithLabelValues("not_found").Inc()
		return nil, false, nil
	}

	receipt, found, err := repo.FindByID(ctx, parsed)
	switch {
	case err != nil:
		app.Metrics.Lookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("looking up receipt %s: %w", parsed, err)
	case !found:
		app.Metrics.Lookups.WithLabelValues("not_found").Inc()
	default:
		app.Metrics.Lookups.WithLabelValues("found").Inc()
	}
	return receipt, found, nil
}

// Reset discards the stored collection, including a corrupted one.
func (app *App) Reset(ctx context.Context) error {
	repo, err := app.repo()
	if err != nil {
		return err
	}
	if err := repo.Reset(ctx); err != nil {
		return fmt.Errorf("resetting receipts: %w", err)
	}
	app.Logger.Warn("receipt collection reset")
	return nil
}

// IsCorrupted reports whether err was caused by an undecodable receipt collection.
func IsCorrupted(err error) bool {
	return errors.Is(err, domain.ErrStoreCorrupted)
}
