package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altaire/deepbook_trader/internal/domain"
	"github.com/altaire/deepbook_trader/internal/usecase"
)

const testPackage = "0xdee9"

type mockPoolRegistry struct{}

func (m *mockPoolRegistry) Pool(poolKey string) (usecase.PoolEntry, error) {
	if poolKey != "DEEP_SUI" {
		return usecase.PoolEntry{}, &domain.LookupError{Entity: "pool", Name: poolKey}
	}
	return usecase.PoolEntry{
		Address:       "0xpool",
		BaseCoinType:  "0xdeep::deep::DEEP",
		QuoteCoinType: "0x2::sui::SUI",
	}, nil
}

type mockManagerRegistry struct{}

func (m *mockManagerRegistry) Manager(managerKey string) (domain.BalanceManager, error) {
	if managerKey != "MANAGER_1" {
		return domain.BalanceManager{}, &domain.LookupError{Entity: "manager", Name: managerKey}
	}
	return domain.BalanceManager{Key: "MANAGER_1", Address: "0xmanager"}, nil
}

func newBuilder() *usecase.OrderBuilder {
	return usecase.NewOrderBuilder(testPackage, &mockPoolRegistry{}, &mockManagerRegistry{})
}

func marketRequest(quantity uint64) domain.OrderRequest {
	return domain.OrderRequest{
		PoolKey:       "DEEP_SUI",
		ManagerKey:    "MANAGER_1",
		ClientOrderID: "cycle-1",
		Side:          domain.SideBid,
		Kind:          domain.OrderKindMarket,
		Quantity:      quantity,
	}
}

func TestValidate_QuantityBelowLotSize(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "DEEP_SUI", TickSize: 1, LotSize: 1000000, MinSize: 1000000}

	_, err := builder.Validate(marketRequest(500000), params)
	require.Error(t, err)

	var invalid *domain.InvalidOrderError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Reason, "lot size")
}

func TestValidate_ValidQuantityBuildsExactOrder(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "DEEP_SUI", TickSize: 1, LotSize: 1000000, MinSize: 1000000}

	validated, err := builder.Validate(marketRequest(2000000), params)
	require.NoError(t, err)

	instruction, err := builder.Build(validated)
	require.NoError(t, err)
	assert.Equal(t, testPackage+"::pool::place_market_order", instruction.Target)
	assert.Contains(t, instruction.Args, uint64(2000000))
}

func TestValidate_LotMultiples(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "DEEP_SUI", TickSize: 1, LotSize: 1000, MinSize: 2000}

	// Multiples of the lot size at or above the minimum pass; everything
	// else is rejected.
	for quantity := uint64(1); quantity < 10000; quantity += 333 {
		_, err := builder.Validate(marketRequest(quantity), params)
		if quantity%params.LotSize == 0 && quantity >= params.MinSize {
			assert.NoError(t, err, "quantity %d", quantity)
		} else {
			assert.Error(t, err, "quantity %d", quantity)
		}
	}
}

func TestValidate_BelowMinSize(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "DEEP_SUI", TickSize: 1, LotSize: 100, MinSize: 1000}

	_, err := builder.Validate(marketRequest(500), params)
	require.Error(t, err)
	var invalid *domain.InvalidOrderError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Reason, "minimum size")
}

func TestValidate_ZeroQuantity(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "DEEP_SUI", TickSize: 1, LotSize: 100, MinSize: 100}

	_, err := builder.Validate(marketRequest(0), params)
	assert.Error(t, err)
}

func TestValidate_LimitPriceTick(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "DEEP_SUI", TickSize: 10, LotSize: 100, MinSize: 100}

	req := marketRequest(200)
	req.Kind = domain.OrderKindLimit
	req.Price = 105 // not a tick multiple
	_, err := builder.Validate(req, params)
	require.Error(t, err)
	var invalid *domain.InvalidOrderError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Reason, "tick size")

	req.Price = 110
	validated, err := builder.Validate(req, params)
	require.NoError(t, err)

	instruction, err := builder.Build(validated)
	require.NoError(t, err)
	assert.Equal(t, testPackage+"::pool::place_limit_order", instruction.Target)
	assert.Contains(t, instruction.Args, uint64(110))
}

func TestValidate_LimitRequiresPrice(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "DEEP_SUI", TickSize: 10, LotSize: 100, MinSize: 100}

	req := marketRequest(200)
	req.Kind = domain.OrderKindLimit
	_, err := builder.Validate(req, params)
	assert.Error(t, err)
}

func TestValidate_MarketRejectsPrice(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "DEEP_SUI", TickSize: 10, LotSize: 100, MinSize: 100}

	req := marketRequest(200)
	req.Price = 110
	_, err := builder.Validate(req, params)
	assert.Error(t, err)
}

func TestBuild_UnknownPool(t *testing.T) {
	builder := newBuilder()
	params := domain.PoolParameters{PoolKey: "NOPE_SUI", TickSize: 1, LotSize: 100, MinSize: 100}

	req := marketRequest(200)
	req.PoolKey = "NOPE_SUI"
	validated, err := builder.Validate(req, params)
	require.NoError(t, err)

	_, err = builder.Build(validated)
	var lookup *domain.LookupError
	require.True(t, errors.As(err, &lookup))
	assert.Equal(t, "pool", lookup.Entity)
}
