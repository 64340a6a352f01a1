package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// JSONRPC issues JSON-RPC 2.0 calls over a Client.
type JSONRPC struct {
	client    *Client
	requestID atomic.Int64
}

// NewJSONRPC wraps c for JSON-RPC use. Requests are posted to the base URL.
func NewJSONRPC(c *Client) *JSONRPC {
	return &JSONRPC{client: c}
}

// Call invokes method with params and decodes the result into out.
func (r *JSONRPC) Call(ctx context.Context, method string, params, out any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      r.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	var resp rpcResponse
	if err := r.client.PostJSON(ctx, "", req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return nil
}
