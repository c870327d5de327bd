package session

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/internal/ports"
	"go.uber.org/zap"
)

func cartItem(id, productID int64, price float64, qty int) models.CartItem {
	return models.CartItem{
		ID:       id,
		Product:  models.Product{ID: productID, Price: price},
		Quantity: qty,
	}
}

func TestCartAddRefetchesFullCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := ports.NewMockCartAPI(ctrl)
	cart := newCart(api, "tok", 7, nil, zap.NewNop())

	// The server applies its own rules: the refetched cart is the truth,
	// whatever the mutation looked like locally.
	serverCart := []models.CartItem{
		cartItem(1, 10, 150000, 3),
		cartItem(2, 20, 90000, 1),
	}
	gomock.InOrder(
		api.EXPECT().Add(gomock.Any(), "tok", int64(10), 2).Return(nil),
		api.EXPECT().Items(gomock.Any(), "tok").Return(serverCart, nil),
	)

	if err := cart.Add(context.Background(), 10, 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	items := cart.Items()
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("items[0].Quantity = %d, want 3 (server truth)", items[0].Quantity)
	}
}

func TestCartAddNormalizesQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := ports.NewMockCartAPI(ctrl)
	cart := newCart(api, "tok", 7, nil, zap.NewNop())

	api.EXPECT().Add(gomock.Any(), "tok", int64(10), 1).Return(nil)
	api.EXPECT().Items(gomock.Any(), "tok").Return(nil, nil)

	if err := cart.Add(context.Background(), 10, -5); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
}

func TestCartMutationsRequireLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: an anonymous session must fail before any API call.
	api := ports.NewMockCartAPI(ctrl)
	cart := newCart(api, "", 0, nil, zap.NewNop())
	ctx := context.Background()

	ops := map[string]func() error{
		"Add":            func() error { return cart.Add(ctx, 1, 1) },
		"UpdateQuantity": func() error { return cart.UpdateQuantity(ctx, 1, 2) },
		"Remove":         func() error { return cart.Remove(ctx, 1) },
		"Clear":          func() error { return cart.Clear(ctx) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrLoginRequired) {
			t.Errorf("%s error = %v, want ErrLoginRequired", name, err)
		}
	}
}

func TestCartLoadAnonymousIsEmptyNoNetwork(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := ports.NewMockCartAPI(ctrl)
	cart := newCart(api, "", 0, nil, zap.NewNop())

	if err := cart.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cart.Items()) != 0 {
		t.Errorf("anonymous cart not empty: %v", cart.Items())
	}
}

func TestCartUpdateQuantityZeroDelegatesToRemove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := ports.NewMockCartAPI(ctrl)
	cart := newCart(api, "tok", 7, nil, zap.NewNop())

	gomock.InOrder(
		api.EXPECT().Remove(gomock.Any(), "tok", int64(5)).Return(nil),
		api.EXPECT().Items(gomock.Any(), "tok").Return(nil, nil),
	)

	if err := cart.UpdateQuantity(context.Background(), 5, 0); err != nil {
		t.Fatalf("UpdateQuantity() error = %v", err)
	}
}

func TestCartFailedMutationKeepsLocalState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := ports.NewMockCartAPI(ctrl)
	cart := newCart(api, "tok", 7, nil, zap.NewNop())

	// Seed local state through a load.
	seeded := []models.CartItem{cartItem(1, 10, 150000, 2)}
	api.EXPECT().Items(gomock.Any(), "tok").Return(seeded, nil)
	if err := cart.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	api.EXPECT().Add(gomock.Any(), "tok", int64(99), 1).Return(errors.New("out of stock"))

	if err := cart.Add(context.Background(), 99, 1); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(cart.Items()) != 1 {
		t.Errorf("local state changed after failed mutation: %v", cart.Items())
	}
}

func TestCartTotalsComputedOnDemand(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := ports.NewMockCartAPI(ctrl)
	cart := newCart(api, "tok", 7, nil, zap.NewNop())

	api.EXPECT().Items(gomock.Any(), "tok").Return([]models.CartItem{
		cartItem(1, 10, 150000, 2),
		cartItem(2, 20, 45000, 3),
	}, nil)
	if err := cart.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cart.Total(); got != 435000 {
		t.Errorf("Total() = %v, want 435000", got)
	}
	if got := cart.ItemCount(); got != 5 {
		t.Errorf("ItemCount() = %d, want 5", got)
	}
}
