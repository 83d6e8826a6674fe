package domain

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// receiptNumberPrefix is prepended to every receipt number.
const receiptNumberPrefix = "REC"

// ErrStoreCorrupted is returned when the persisted receipt collection cannot be decoded.
// The stored data is left untouched so it can be inspected before calling Reset.
var ErrStoreCorrupted = errors.New("stored receipts are corrupted")

// ReceiptRepository defines the interface for persisting receipts.
// Receipts are only ever appended; there is no update or delete path for a single receipt.
type ReceiptRepository interface {
	// LoadAll retrieves every stored receipt in insertion order.
	// It returns an empty slice when nothing has been stored yet.
	LoadAll(ctx context.Context) ([]*Receipt, error)

	// Append adds the receipt to the end of the stored collection.
	Append(ctx context.Context, receipt *Receipt) error

	// FindByID returns the first receipt whose ID matches id.
	// The boolean is false when no receipt matches, which is not an error.
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, bool, error)

	// Reset removes the whole stored collection. It is used to recover from ErrStoreCorrupted.
	Reset(ctx context.Context) error
}

// DomainEntry is a single domain registration listed on a receipt.
type DomainEntry struct {
	Name             string    `json:"name"`             // The registrable domain, e.g. example.com.
	RegistrationDate time.Time `json:"registrationDate"` // The date the domain was registered.
	Notes            string    `json:"notes,omitempty"`  // Optional free text printed under the entry.
}

// ReceiptFormData is the validated input used to create a receipt.
type ReceiptFormData struct {
	Domains       []DomainEntry `json:"domains"`                 // At least one entry.
	TwitterHandle string        `json:"twitterHandle,omitempty"` // Optional, without the leading '@'.
}

// Receipt is an immutable record of one or more domain registrations.
type Receipt struct {
	ReceiptFormData
	ID            uuid.UUID `json:"id"`            // Unique identifier, the lookup key.
	CreatedAt     time.Time `json:"createdAt"`     // Assigned once when the receipt is created.
	ReceiptNumber string    `json:"receiptNumber"` // Human-facing order code derived from CreatedAt.
}

// NewReceipt builds a receipt from validated form data.
// The domain entries are copied so the receipt does not share memory with data.
func NewReceipt(data ReceiptFormData, id uuid.UUID, createdAt time.Time) *Receipt {
	domains := make([]DomainEntry, len(data.Domains))
	copy(domains, data.Domains)

	return &Receipt{
		ReceiptFormData: ReceiptFormData{
			Domains:       domains,
			TwitterHandle: data.TwitterHandle,
		},
		ID:            id,
		CreatedAt:     createdAt,
		ReceiptNumber: ReceiptNumber(createdAt),
	}
}

// ReceiptNumber derives the display code for a receipt created at t:
// the epoch-millisecond timestamp in upper-case base 36, prefixed with REC.
// Two receipts created within the same millisecond share a number.
func ReceiptNumber(t time.Time) string {
	return receiptNumberPrefix + strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
}
