package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/internal/ports"
	"go.uber.org/zap"
)

// ErrAddressNotFound is returned when a selection names an address that is
// not in the local list.
var ErrAddressNotFound = errors.New("address not found")

// AddressBook mirrors the user's address list and tracks the in-session
// checkout selection. The selection is independent of the account default:
// a user may pick a non-default address for one order without changing the
// default.
type AddressBook struct {
	mu         sync.Mutex
	api        ports.AddressAPI
	store      ports.SessionStore
	storeKey   string
	token      string
	userID     int64
	addresses  []models.Address
	selectedID int64
	logger     *zap.Logger
}

func newAddressBook(api ports.AddressAPI, store ports.SessionStore, storeKey, token string, userID int64, log *zap.Logger) *AddressBook {
	return &AddressBook{api: api, store: store, storeKey: storeKey, token: token, userID: userID, logger: log}
}

func (b *AddressBook) requireUser() error {
	if b.userID == 0 {
		return fmt.Errorf("cannot modify addresses: %w", ErrLoginRequired)
	}
	return nil
}

// Load fetches the full address list. If no address is selected and a
// default exists, the default is auto-selected.
func (b *AddressBook) Load(ctx context.Context) error {
	if b.userID == 0 {
		return nil
	}
	b.restoreSelection(ctx)
	return b.refetch(ctx)
}

func (b *AddressBook) refetch(ctx context.Context) error {
	addresses, err := b.api.List(ctx, b.token)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.addresses = addresses
	b.normalizeSelection()
	b.mu.Unlock()
	return nil
}

// restoreSelection reads the persisted in-session selection, if any.
func (b *AddressBook) restoreSelection(ctx context.Context) {
	if b.storeKey == "" {
		return
	}
	data, err := b.store.Get(ctx, b.storeKey)
	if err != nil {
		return
	}
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		b.mu.Lock()
		b.selectedID = id
		b.mu.Unlock()
	}
}

// normalizeSelection drops a selection that no longer exists and falls
// back to the default address. Callers hold the lock.
func (b *AddressBook) normalizeSelection() {
	if b.selectedID != 0 {
		for _, a := range b.addresses {
			if a.AddressID == b.selectedID {
				return
			}
		}
		b.selectedID = 0
	}
	for _, a := range b.addresses {
		if a.IsDefault {
			b.selectedID = a.AddressID
			return
		}
	}
}

// Addresses returns a copy of the current list.
func (b *AddressBook) Addresses() []models.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Address, len(b.addresses))
	copy(out, b.addresses)
	return out
}

// Default returns the account default address, or nil.
func (b *AddressBook) Default() *models.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.addresses {
		if a.IsDefault {
			addr := a
			return &addr
		}
	}
	return nil
}

// Selected returns the address chosen for this checkout, or nil.
func (b *AddressBook) Selected() *models.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.addresses {
		if a.AddressID == b.selectedID {
			addr := a
			return &addr
		}
	}
	return nil
}

// Select picks an address for this checkout without changing the account
// default. The selection is persisted with the session.
func (b *AddressBook) Select(ctx context.Context, addressID int64) error {
	b.mu.Lock()
	found := false
	for _, a := range b.addresses {
		if a.AddressID == addressID {
			found = true
			break
		}
	}
	if found {
		b.selectedID = addressID
	}
	b.mu.Unlock()

	if !found {
		return ErrAddressNotFound
	}
	if b.storeKey != "" {
		if err := b.store.Set(ctx, b.storeKey, addressID); err != nil {
			b.logger.Warn("failed to persist address selection", zap.Error(err))
		}
	}
	return nil
}

// Add creates an address, then resyncs the list.
func (b *AddressBook) Add(ctx context.Context, req models.AddressRequest) error {
	if err := b.requireUser(); err != nil {
		return err
	}
	if err := b.api.Create(ctx, b.token, req); err != nil {
		return err
	}
	return b.refetch(ctx)
}

// Update modifies an address, then resyncs the list.
func (b *AddressBook) Update(ctx context.Context, addressID int64, req models.AddressRequest) error {
	if err := b.requireUser(); err != nil {
		return err
	}
	if err := b.api.Update(ctx, b.token, addressID, req); err != nil {
		return err
	}
	return b.refetch(ctx)
}

// Delete removes an address, then resyncs the list.
func (b *AddressBook) Delete(ctx context.Context, addressID int64) error {
	if err := b.requireUser(); err != nil {
		return err
	}
	if err := b.api.Delete(ctx, b.token, addressID); err != nil {
		return err
	}
	return b.refetch(ctx)
}

// SetDefault marks one address as the account default. This is the one
// place local state is rewritten optimistically instead of refetched:
// exactly one entry ends up with IsDefault true. If the server call fails
// the list is refetched to restore server truth before the error returns.
func (b *AddressBook) SetDefault(ctx context.Context, addressID int64) error {
	if err := b.requireUser(); err != nil {
		return err
	}

	b.mu.Lock()
	found := false
	for i := range b.addresses {
		if b.addresses[i].AddressID == addressID {
			found = true
		}
	}
	if !found {
		b.mu.Unlock()
		return ErrAddressNotFound
	}
	for i := range b.addresses {
		b.addresses[i].IsDefault = b.addresses[i].AddressID == addressID
	}
	b.mu.Unlock()

	if err := b.api.SetDefault(ctx, b.token, addressID); err != nil {
		if refetchErr := b.refetch(ctx); refetchErr != nil {
			b.logger.Warn("failed to restore address list after rejected default change",
				zap.Error(refetchErr))
		}
		return err
	}
	return nil
}
