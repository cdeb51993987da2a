package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/altaire/deepbook_trader/internal/config"
	"github.com/altaire/deepbook_trader/internal/domain"
)

const (
	TestnetFullnodeURL = "https://fullnode.testnet.sui.io:443"
	MainnetFullnodeURL = "https://fullnode.mainnet.sui.io:443"

	// gasBudget in MIST, generous enough for a single-order transaction.
	gasBudget = "100000000"
)

// FullnodeURL returns the default node endpoint for a network.
func FullnodeURL(network string) string {
	if network == config.NetworkMainnet {
		return MainnetFullnodeURL
	}
	return TestnetFullnodeURL
}

// Client talks JSON-RPC 2.0 to a Sui fullnode. It implements
// domain.LedgerClient; transaction serialization is delegated to the node's
// transaction-building endpoints so nothing above this layer touches wire
// format.
type Client struct {
	http   *resty.Client
	signer *Signer
	logger *zap.Logger
}

func NewClient(baseURL string, signer *Signer, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		signer: signer,
		logger: logger,
	}
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC call. Anything short of a well-formed result is
// a transport failure, retryable on the next cycle.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	var resp rpcResponse
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetBody(rpcRequest{Jsonrpc: "2.0", ID: 1, Method: method, Params: params}).
		SetResult(&resp).
		Post("/")
	if err != nil {
		return &domain.TransportError{Op: method, Err: err}
	}
	if httpResp.IsError() {
		return &domain.TransportError{Op: method, Err: fmt.Errorf("http %d: %s", httpResp.StatusCode(), httpResp.String())}
	}
	if resp.Error != nil {
		return &domain.TransportError{Op: method, Err: fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)}
	}
	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return &domain.TransportError{Op: method, Err: fmt.Errorf("malformed result: %w", err)}
		}
	}
	return nil
}

// buildTxBytes asks the node to serialize the transaction. Single
// instructions go through unsafe_moveCall, multiple through
// unsafe_batchTransaction.
func (c *Client) buildTxBytes(ctx context.Context, tx *domain.Transaction) ([]byte, error) {
	if len(tx.Instructions) == 0 {
		return nil, &domain.TransportError{Op: "build", Err: fmt.Errorf("transaction has no instructions")}
	}

	var result struct {
		TxBytes string `json:"txBytes"`
	}
	if len(tx.Instructions) == 1 {
		inst := tx.Instructions[0]
		pkg, mod, fn, err := splitTarget(inst.Target)
		if err != nil {
			return nil, err
		}
		params := []any{
			c.signer.Address(), pkg, mod, fn,
			inst.TypeArgs, encodeArgs(inst.Args), nil, gasBudget,
		}
		if err := c.call(ctx, "unsafe_moveCall", params, &result); err != nil {
			return nil, err
		}
	} else {
		batch := make([]any, 0, len(tx.Instructions))
		for _, inst := range tx.Instructions {
			pkg, mod, fn, err := splitTarget(inst.Target)
			if err != nil {
				return nil, err
			}
			batch = append(batch, map[string]any{
				"moveCallRequestParams": map[string]any{
					"packageObjectId": pkg,
					"module":          mod,
					"function":        fn,
					"typeArguments":   inst.TypeArgs,
					"arguments":       encodeArgs(inst.Args),
				},
			})
		}
		params := []any{c.signer.Address(), batch, nil, gasBudget}
		if err := c.call(ctx, "unsafe_batchTransaction", params, &result); err != nil {
			return nil, err
		}
	}

	raw, err := base64.StdEncoding.DecodeString(result.TxBytes)
	if err != nil {
		return nil, &domain.TransportError{Op: "build", Err: fmt.Errorf("malformed txBytes: %w", err)}
	}
	return raw, nil
}

// Submit signs and executes the transaction, waiting for local execution so
// effects are available in the response. A ledger-reported failure status is
// surfaced in the result, not as an error: the caller distinguishes it from
// transport faults.
func (c *Client) Submit(ctx context.Context, tx *domain.Transaction) (*domain.ExecutionResult, error) {
	txBytes, err := c.buildTxBytes(ctx, tx)
	if err != nil {
		return nil, err
	}
	signature := c.signer.SignTransaction(txBytes)

	var result struct {
		Digest  string `json:"digest"`
		Effects struct {
			Status struct {
				Status string `json:"status"`
				Error  string `json:"error"`
			} `json:"status"`
		} `json:"effects"`
	}
	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		[]string{signature},
		map[string]any{"showEffects": true, "showObjectChanges": true},
		"WaitForLocalExecution",
	}
	if err := c.call(ctx, "sui_executeTransactionBlock", params, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("Transaction executed",
		zap.String("digest", result.Digest),
		zap.String("status", result.Effects.Status.Status))
	return &domain.ExecutionResult{
		Digest: result.Digest,
		Status: result.Effects.Status.Status,
		Error:  result.Effects.Status.Error,
	}, nil
}

// Simulate dev-inspects the transaction and returns the raw return-value
// bytes in call order. An empty or missing result set is returned as-is;
// shape validation belongs to the decoder above this layer.
func (c *Client) Simulate(ctx context.Context, tx *domain.Transaction) ([][]byte, error) {
	txBytes, err := c.buildTxBytes(ctx, tx)
	if err != nil {
		return nil, err
	}

	var result struct {
		Error   string `json:"error"`
		Results []struct {
			ReturnValues [][]json.RawMessage `json:"returnValues"`
		} `json:"results"`
	}
	params := []any{c.signer.Address(), base64.StdEncoding.EncodeToString(txBytes)}
	if err := c.call(ctx, "sui_devInspectTransactionBlock", params, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, &domain.TransportError{Op: "sui_devInspectTransactionBlock", Err: fmt.Errorf("dry-run failed: %s", result.Error)}
	}

	var values [][]byte
	for _, res := range result.Results {
		for _, rv := range res.ReturnValues {
			// Each return value is a [bytes, type] tuple; the bytes arrive
			// as a JSON array of numbers.
			if len(rv) == 0 {
				continue
			}
			var nums []int
			if err := json.Unmarshal(rv[0], &nums); err != nil {
				return nil, &domain.TransportError{Op: "sui_devInspectTransactionBlock", Err: fmt.Errorf("malformed return value: %w", err)}
			}
			raw := make([]byte, len(nums))
			for i, n := range nums {
				if n < 0 || n > 255 {
					return nil, &domain.TransportError{Op: "sui_devInspectTransactionBlock", Err: fmt.Errorf("return value byte %d out of range: %d", i, n)}
				}
				raw[i] = byte(n)
			}
			values = append(values, raw)
		}
	}
	return values, nil
}

// OwnerBalance returns the signer-owned balance of a coin type.
func (c *Client) OwnerBalance(ctx context.Context, owner, coinType string) (uint64, error) {
	var result struct {
		TotalBalance string `json:"totalBalance"`
	}
	if err := c.call(ctx, "suix_getBalance", []any{owner, coinType}, &result); err != nil {
		return 0, err
	}
	balance, err := strconv.ParseUint(result.TotalBalance, 10, 64)
	if err != nil {
		return 0, &domain.TransportError{Op: "suix_getBalance", Err: fmt.Errorf("malformed balance %q: %w", result.TotalBalance, err)}
	}
	return balance, nil
}

func splitTarget(target string) (pkg, mod, fn string, err error) {
	parts := strings.Split(target, "::")
	if len(parts) != 3 {
		return "", "", "", &domain.TransportError{Op: "build", Err: fmt.Errorf("malformed target %q", target)}
	}
	return parts[0], parts[1], parts[2], nil
}

// encodeArgs converts instruction arguments to JSON-RPC shapes: u64 values
// travel as decimal strings, everything else as-is.
func encodeArgs(args []any) []any {
	encoded := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case uint64:
			encoded[i] = strconv.FormatUint(v, 10)
		default:
			encoded[i] = arg
		}
	}
	return encoded
}
