package deepbook

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/domain"
)

// BalanceManagerClient reads and builds instructions against the DeepBook
// balance_manager module. Implements domain.BalanceManagerClient.
type BalanceManagerClient struct {
	ledger   domain.LedgerClient
	registry *Registry
	logger   *zap.Logger
}

func NewBalanceManagerClient(ledger domain.LedgerClient, registry *Registry, logger *zap.Logger) *BalanceManagerClient {
	return &BalanceManagerClient{
		ledger:   ledger,
		registry: registry,
		logger:   logger,
	}
}

// CheckBalance dry-runs balance_manager::balance for one asset. Read-only
// and side-effect free.
func (c *BalanceManagerClient) CheckBalance(ctx context.Context, managerKey, asset string) (domain.AssetBalance, error) {
	manager, err := c.registry.Manager(managerKey)
	if err != nil {
		return domain.AssetBalance{}, err
	}
	coinType, err := c.registry.CoinType(asset)
	if err != nil {
		return domain.AssetBalance{}, err
	}

	tx := domain.NewTransaction()
	tx.Add(&domain.Instruction{
		Target:   c.registry.DeepbookPackage() + "::balance_manager::balance",
		TypeArgs: []string{coinType},
		Args:     []any{manager.Address},
	})

	values, err := c.ledger.Simulate(ctx, tx)
	if err != nil {
		return domain.AssetBalance{}, err
	}
	if len(values) != 1 {
		return domain.AssetBalance{}, &domain.ParamDecodeError{
			PoolKey: managerKey,
			Reason:  fmt.Sprintf("balance call returned %d values, expected 1", len(values)),
		}
	}
	quantity, err := DecodeU64(values[0])
	if err != nil {
		return domain.AssetBalance{}, &domain.ParamDecodeError{PoolKey: managerKey, Reason: err.Error()}
	}

	return domain.AssetBalance{
		Manager:  managerKey,
		Asset:    asset,
		Quantity: quantity,
	}, nil
}

// DepositInstruction builds a deposit of amount smallest units into the
// manager. Sufficiency of the owner-held balance is enforced by the ledger
// at submission, not here.
func (c *BalanceManagerClient) DepositInstruction(managerKey, asset string, amount uint64) (*domain.Instruction, error) {
	manager, err := c.registry.Manager(managerKey)
	if err != nil {
		return nil, err
	}
	coinType, err := c.registry.CoinType(asset)
	if err != nil {
		return nil, err
	}

	return &domain.Instruction{
		Target:   c.registry.DeepbookPackage() + "::balance_manager::deposit",
		TypeArgs: []string{coinType},
		Args:     []any{manager.Address, amount},
	}, nil
}

// DelegateTradeCapInstructions mints a trade capability for the manager and
// transfers it to the recipient, granting trading rights without withdrawal
// rights. At most one active delegated cap per manager is expected; the
// module enforces it on-ledger.
func (c *BalanceManagerClient) DelegateTradeCapInstructions(managerKey, recipient string) ([]*domain.Instruction, error) {
	manager, err := c.registry.Manager(managerKey)
	if err != nil {
		return nil, err
	}
	if recipient == "" {
		return nil, fmt.Errorf("trade cap recipient is required")
	}

	mint := &domain.Instruction{
		Target: c.registry.DeepbookPackage() + "::balance_manager::mint_trade_cap",
		Args:   []any{manager.Address},
	}
	transfer := &domain.Instruction{
		Target: "0x2::transfer::public_transfer",
		Args:   []any{"{result:0}", recipient},
	}
	return []*domain.Instruction{mint, transfer}, nil
}
