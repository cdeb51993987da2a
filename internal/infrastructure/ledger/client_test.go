package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/config"
	"github.com/altaire/deepbook_trader/internal/domain"
)

func testSigner(t *testing.T) *Signer {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	signer, err := NewSigner(config.Credential{Kind: config.CredentialHexSeed, Value: hex.EncodeToString(seed)})
	require.NoError(t, err)
	return signer
}

// rpcServer answers each JSON-RPC method with a canned result.
func rpcServer(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, ok := results[req.Method]
		if !ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method %s not found"}}`, req.Method)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, result)
	}))
}

func orderTx() *domain.Transaction {
	tx := domain.NewTransaction()
	tx.Add(&domain.Instruction{
		Target:   "0xdee9::pool::place_market_order",
		TypeArgs: []string{"0xdeep::deep::DEEP", "0x2::sui::SUI"},
		Args:     []any{"0xpool", "0xmanager", "cycle-1", uint64(100), true, true},
	})
	return tx
}

func TestSubmit_Success(t *testing.T) {
	server := rpcServer(t, map[string]string{
		"unsafe_moveCall":             `{"txBytes":"dHgtYnl0ZXM="}`,
		"sui_executeTransactionBlock": `{"digest":"4Qx","effects":{"status":{"status":"success"}}}`,
	})
	defer server.Close()

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	result, err := client.Submit(context.Background(), orderTx())
	require.NoError(t, err)
	assert.Equal(t, "4Qx", result.Digest)
	assert.True(t, result.Succeeded())
}

func TestSubmit_LedgerFailureStatusIsNotAnError(t *testing.T) {
	server := rpcServer(t, map[string]string{
		"unsafe_moveCall":             `{"txBytes":"dHgtYnl0ZXM="}`,
		"sui_executeTransactionBlock": `{"digest":"4Qx","effects":{"status":{"status":"failure","error":"InsufficientBalance"}}}`,
	})
	defer server.Close()

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	result, err := client.Submit(context.Background(), orderTx())
	require.NoError(t, err)
	assert.False(t, result.Succeeded())
	assert.Equal(t, "InsufficientBalance", result.Error)
}

func TestSubmit_RPCErrorIsTransport(t *testing.T) {
	server := rpcServer(t, map[string]string{})
	defer server.Close()

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	_, err := client.Submit(context.Background(), orderTx())
	assert.Equal(t, domain.KindTransport, domain.KindOf(err))
}

func TestSubmit_NodeUnreachableIsTransport(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", testSigner(t), 200*time.Millisecond, zap.NewNop())
	_, err := client.Submit(context.Background(), orderTx())
	assert.Equal(t, domain.KindTransport, domain.KindOf(err))
}

func TestSubmit_EmptyTransaction(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", testSigner(t), time.Second, zap.NewNop())
	_, err := client.Submit(context.Background(), domain.NewTransaction())
	assert.Error(t, err)
}

func TestSimulate_ReturnValues(t *testing.T) {
	server := rpcServer(t, map[string]string{
		"unsafe_moveCall": `{"txBytes":"dHgtYnl0ZXM="}`,
		"sui_devInspectTransactionBlock": `{"results":[{"returnValues":[
			[[232,3,0,0,0,0,0,0],"u64"],
			[[16,39,0,0,0,0,0,0],"u64"],
			[[160,134,1,0,0,0,0,0],"u64"]
		]}]}`,
	})
	defer server.Close()

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	values, err := client.Simulate(context.Background(), orderTx())
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, []byte{232, 3, 0, 0, 0, 0, 0, 0}, values[0])
	assert.Equal(t, []byte{16, 39, 0, 0, 0, 0, 0, 0}, values[1])
	assert.Equal(t, []byte{160, 134, 1, 0, 0, 0, 0, 0}, values[2])
}

func TestSimulate_OutOfRangeByteIsTransport(t *testing.T) {
	server := rpcServer(t, map[string]string{
		"unsafe_moveCall": `{"txBytes":"dHgtYnl0ZXM="}`,
		"sui_devInspectTransactionBlock": `{"results":[{"returnValues":[
			[[256,3,0,0,0,0,0,0],"u64"]
		]}]}`,
	})
	defer server.Close()

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	_, err := client.Simulate(context.Background(), orderTx())
	require.Error(t, err)
	assert.Equal(t, domain.KindTransport, domain.KindOf(err))
	assert.Contains(t, err.Error(), "out of range")
}

func TestSimulate_DryRunErrorIsTransport(t *testing.T) {
	server := rpcServer(t, map[string]string{
		"unsafe_moveCall":                `{"txBytes":"dHgtYnl0ZXM="}`,
		"sui_devInspectTransactionBlock": `{"error":"MoveAbort(1)","results":[]}`,
	})
	defer server.Close()

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	_, err := client.Simulate(context.Background(), orderTx())
	assert.Equal(t, domain.KindTransport, domain.KindOf(err))
}

func TestOwnerBalance(t *testing.T) {
	server := rpcServer(t, map[string]string{
		"suix_getBalance": `{"coinType":"0x2::sui::SUI","totalBalance":"5000000"}`,
	})
	defer server.Close()

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	balance, err := client.OwnerBalance(context.Background(), "0xowner", "0x2::sui::SUI")
	require.NoError(t, err)
	assert.Equal(t, uint64(5000000), balance)
}

func TestOwnerBalance_MalformedBalance(t *testing.T) {
	server := rpcServer(t, map[string]string{
		"suix_getBalance": `{"totalBalance":"not-a-number"}`,
	})
	defer server.Close()

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	_, err := client.OwnerBalance(context.Background(), "0xowner", "0x2::sui::SUI")
	assert.Equal(t, domain.KindTransport, domain.KindOf(err))
}

func TestBatchTransactionBuild(t *testing.T) {
	var sawBatch bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Method {
		case "unsafe_batchTransaction":
			sawBatch = true
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"txBytes":"dHgtYnl0ZXM="}}`)
		case "sui_executeTransactionBlock":
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"digest":"4Qx","effects":{"status":{"status":"success"}}}}`)
		default:
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"unexpected method"}}`)
		}
	}))
	defer server.Close()

	tx := domain.NewTransaction()
	tx.Add(
		&domain.Instruction{Target: "0xdee9::balance_manager::mint_trade_cap", Args: []any{"0xmanager"}},
		&domain.Instruction{Target: "0x2::transfer::public_transfer", Args: []any{"{result:0}", "0xplatform"}},
	)

	client := NewClient(server.URL, testSigner(t), time.Second, zap.NewNop())
	result, err := client.Submit(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, sawBatch)
	assert.True(t, result.Succeeded())
}
