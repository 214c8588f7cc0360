package receivable

import (
	"strings"
	"sync"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// LoadState is the state of the debt snapshot behind a draft
type LoadState string

const (
	LoadStateIdle    LoadState = "IDLE"
	LoadStateLoading LoadState = "LOADING"
	LoadStateReady   LoadState = "READY"
	LoadStateFailed  LoadState = "FAILED"
)

// String returns the string representation of LoadState
func (s LoadState) String() string {
	return string(s)
}

// CollectionDraft is an in-memory payment being allocated across a client's
// open invoices. It is owned by one session and guarded by its own mutex;
// callers hold the lock for state changes only, never across remote calls.
type CollectionDraft struct {
	sync.Mutex
	shared.BaseEntity

	OwnerID      string
	ClientID     int64
	SellerID     *int64
	Observations string

	state      LoadState
	loadError  string
	ticket     uint64
	sheet      *AllocationSheet
	submitting bool
}

// NewCollectionDraft creates a draft for a client; the snapshot is loaded separately
func NewCollectionDraft(ownerID string, clientID int64) (*CollectionDraft, error) {
	if clientID <= 0 {
		return nil, ErrClientRequired
	}
	return &CollectionDraft{
		BaseEntity: shared.NewBaseEntity(),
		OwnerID:    ownerID,
		ClientID:   clientID,
		state:      LoadStateIdle,
		sheet:      NewAllocationSheet(nil),
	}, nil
}

// State returns the snapshot load state
func (d *CollectionDraft) State() LoadState {
	return d.state
}

// LoadError returns the message of the last failed load
func (d *CollectionDraft) LoadError() string {
	return d.loadError
}

// Sheet returns the allocation sheet
func (d *CollectionDraft) Sheet() *AllocationSheet {
	return d.sheet
}

// Snapshot returns the loaded debt snapshot, nil until the first load succeeds
func (d *CollectionDraft) Snapshot() *DebtSnapshot {
	return d.sheet.Snapshot()
}

// IsSubmitting returns true while a submission is in flight
func (d *CollectionDraft) IsSubmitting() bool {
	return d.submitting
}

// SwitchClient points the draft at another client; the next load replaces
// the snapshot and any response for the previous client becomes stale
func (d *CollectionDraft) SwitchClient(clientID int64) error {
	if clientID <= 0 {
		return ErrClientRequired
	}
	d.ClientID = clientID
	d.ticket++
	d.Touch()
	return nil
}

// BeginLoad enters the loading state, clears the previous error and every
// allocation, and returns the ticket the response must present
func (d *CollectionDraft) BeginLoad() uint64 {
	d.ticket++
	d.state = LoadStateLoading
	d.loadError = ""
	d.sheet.Clear()
	d.Touch()
	return d.ticket
}

// CompleteLoad installs snapshot if ticket is still current.
// Returns false when the response is stale and was discarded.
func (d *CollectionDraft) CompleteLoad(ticket uint64, snapshot *DebtSnapshot) bool {
	if ticket != d.ticket {
		return false
	}
	d.sheet.Reset(snapshot)
	d.state = LoadStateReady
	return true
}

// FailLoad records a failed load if ticket is still current
func (d *CollectionDraft) FailLoad(ticket uint64, message string) bool {
	if ticket != d.ticket {
		return false
	}
	d.state = LoadStateFailed
	d.loadError = message
	return true
}

// SetAllocation normalizes and stores an amount for an invoice
func (d *CollectionDraft) SetAllocation(invoiceID int64, raw string) (valueobject.Money, error) {
	if d.state != LoadStateReady {
		return valueobject.Zero(), ErrSnapshotNotReady
	}
	d.Touch()
	return d.sheet.Set(invoiceID, raw)
}

// FillAll allocates every open invoice's full balance
func (d *CollectionDraft) FillAll() error {
	if d.state != LoadStateReady {
		return ErrSnapshotNotReady
	}
	d.sheet.FillAll()
	d.Touch()
	return nil
}

// SetDetails records the optional seller and free-text observations
func (d *CollectionDraft) SetDetails(sellerID *int64, observations string) {
	d.SellerID = sellerID
	d.Observations = observations
	d.Touch()
}

// BeginSubmit marks the draft as submitting; a second call before EndSubmit fails
func (d *CollectionDraft) BeginSubmit() error {
	if d.submitting {
		return shared.ErrSubmissionInFlight
	}
	d.submitting = true
	return nil
}

// EndSubmit clears the submitting mark
func (d *CollectionDraft) EndSubmit() {
	d.submitting = false
}

// DraftState is everything a failed submission must put back
type DraftState struct {
	Amounts      map[int64]valueobject.Money
	SellerID     *int64
	Observations string
}

// Capture copies the user-editable state
func (d *CollectionDraft) Capture() DraftState {
	var seller *int64
	if d.SellerID != nil {
		id := *d.SellerID
		seller = &id
	}
	return DraftState{
		Amounts:      d.sheet.Amounts(),
		SellerID:     seller,
		Observations: d.Observations,
	}
}

// Restore puts back a captured state
func (d *CollectionDraft) Restore(state DraftState) {
	d.sheet.Restore(state.Amounts)
	d.SellerID = state.SellerID
	d.Observations = state.Observations
}

// ClearEdits discards allocations and observations after a successful submission
func (d *CollectionDraft) ClearEdits() {
	d.sheet.Clear()
	d.Observations = ""
}

// trimmedOrNil returns nil for blank text
func trimmedOrNil(s string) *string {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	return &t
}
