package deepbook

import (
	"fmt"

	"github.com/altaire/deepbook_trader/internal/config"
	"github.com/altaire/deepbook_trader/internal/domain"
	"github.com/altaire/deepbook_trader/internal/usecase"
)

// Registry maps symbolic asset and pool keys to on-ledger identifiers for
// one network. Unknown keys are configuration defects, reported as
// domain.LookupError.
type Registry struct {
	deepbookPackage string
	coinTypes       map[string]string
	pools           map[string]usecase.PoolEntry
	managers        map[string]domain.BalanceManager
}

const (
	testnetDeepbookPackage = "0x984757fc7c0e6dd5f15c2c66e881dd6e5aca98b725f3dbd83c445e057ebb790a"
	mainnetDeepbookPackage = "0x2c8d603bc51326b8c13cef9dd07031a408a48dddb541963357661df5d3204809"
)

var testnetCoinTypes = map[string]string{
	"SUI":    "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI",
	"DEEP":   "0x36dbef866a1d62bf7328989a10fb2f07d769f4ee587c0de4a0a256e57e0a58a8::deep::DEEP",
	"DBUSDC": "0xf7152c05930480cd740d7311b5b8b45c6f488e3a53a11c3f74a6fac36a52e0d7::DBUSDC::DBUSDC",
	"DBUSDT": "0xf7152c05930480cd740d7311b5b8b45c6f488e3a53a11c3f74a6fac36a52e0d7::DBUSDT::DBUSDT",
}

var mainnetCoinTypes = map[string]string{
	"SUI":  "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI",
	"DEEP": "0xdeeb7a4662eec9f2f3def03fb937a663dddaa2e215b8078a284d026b7946c270::deep::DEEP",
	"USDC": "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC",
}

type poolDef struct {
	address string
	base    string
	quote   string
}

var testnetPools = map[string]poolDef{
	"DEEP_SUI":   {"0x48c95963e9eac37a316b7ae04a0deb761bcdcc2b67912374d6036e7f0e9bae9f", "DEEP", "SUI"},
	"SUI_DBUSDC": {"0x520c89c6c78c566eed0ebf24f854a8c22d8fdd06a6f16ad01f108dad7f1baec9", "SUI", "DBUSDC"},
}

var mainnetPools = map[string]poolDef{
	"DEEP_SUI":  {"0xb663828d6217467c8a1838a03793da896cbe745b150ebd57d82f814ca579fc22", "DEEP", "SUI"},
	"SUI_USDC":  {"0xe05dafb5133bcffb8d59f4e12465dc0e9faeaa05e3e342a08fe135800e3e4407", "SUI", "USDC"},
	"DEEP_USDC": {"0xf948981b806057580f91622417534f491da5f61aeaf33d0ed8e69fd5691c95ce", "DEEP", "USDC"},
}

// NewRegistry builds the registry for the configured network and the
// operator's balance manager.
func NewRegistry(network string, manager domain.BalanceManager) (*Registry, error) {
	r := &Registry{
		managers: map[string]domain.BalanceManager{manager.Key: manager},
	}
	switch network {
	case config.NetworkTestnet:
		r.deepbookPackage = testnetDeepbookPackage
		r.coinTypes = testnetCoinTypes
		r.pools = buildPools(testnetPools, testnetCoinTypes)
	case config.NetworkMainnet:
		r.deepbookPackage = mainnetDeepbookPackage
		r.coinTypes = mainnetCoinTypes
		r.pools = buildPools(mainnetPools, mainnetCoinTypes)
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
	return r, nil
}

func buildPools(defs map[string]poolDef, coinTypes map[string]string) map[string]usecase.PoolEntry {
	pools := make(map[string]usecase.PoolEntry, len(defs))
	for key, def := range defs {
		pools[key] = usecase.PoolEntry{
			Address:       def.address,
			BaseCoinType:  coinTypes[def.base],
			QuoteCoinType: coinTypes[def.quote],
		}
	}
	return pools
}

func (r *Registry) DeepbookPackage() string {
	return r.deepbookPackage
}

func (r *Registry) CoinType(asset string) (string, error) {
	coinType, ok := r.coinTypes[asset]
	if !ok {
		return "", &domain.LookupError{Entity: "asset", Name: asset}
	}
	return coinType, nil
}

func (r *Registry) Pool(poolKey string) (usecase.PoolEntry, error) {
	pool, ok := r.pools[poolKey]
	if !ok {
		return usecase.PoolEntry{}, &domain.LookupError{Entity: "pool", Name: poolKey}
	}
	return pool, nil
}

func (r *Registry) Manager(managerKey string) (domain.BalanceManager, error) {
	manager, ok := r.managers[managerKey]
	if !ok {
		return domain.BalanceManager{}, &domain.LookupError{Entity: "manager", Name: managerKey}
	}
	return manager, nil
}
