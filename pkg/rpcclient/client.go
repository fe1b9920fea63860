// Package rpcclient is a thin JSON-RPC client for the daemon's operator
// endpoint, used by lockedinctl.
package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rachelyongies/Lockedin-sub005/pkg/rpc"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
)

type Client interface {
	Health() (json.RawMessage, error)
	Addresses() (map[swap.Chain]string, error)
	ListSwaps(states ...swap.State) ([]rpc.SwapView, error)
	SwapStatus(swapID string) (rpc.SwapView, error)
}

type client struct {
	user      string
	pass      string
	protocol  string
	rpcServer string
}

func NewClient(userName string, password string, protocol string, rpcServer string) Client {
	return &client{
		user:      userName,
		pass:      password,
		protocol:  protocol,
		rpcServer: rpcServer,
	}
}

// SendPostRequest sends one JSON-RPC command over HTTP POST with basic auth
// and returns the result field, or the error field as a Go error.
func (c *client) SendPostRequest(method string, jsonData []byte) (json.RawMessage, error) {
	payload := rpc.Request{
		Version: "2.0",
		Method:  method,
		Params:  json.RawMessage(jsonData),
	}
	marshalledJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.protocol + "://" + c.rpcServer
	httpRequest, err := http.NewRequest("POST", url, bytes.NewReader(marshalledJSON))
	if err != nil {
		return nil, err
	}
	httpRequest.Close = true
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.SetBasicAuth(c.user, c.pass)

	httpResponse, err := http.DefaultClient.Do(httpRequest)
	if err != nil {
		return nil, err
	}

	respBytes, err := io.ReadAll(httpResponse.Body)
	httpResponse.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading json reply: %v", err)
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		if len(respBytes) == 0 {
			return nil, fmt.Errorf("%d %s", httpResponse.StatusCode,
				http.StatusText(httpResponse.StatusCode))
		}
		var resp rpc.Response
		if err := json.Unmarshal(respBytes, &resp); err == nil && resp.Error != nil {
			return nil, fmt.Errorf("%s: %s", resp.Error.Message, resp.Error.Data)
		}
		return nil, fmt.Errorf("%s", respBytes)
	}

	var resp rpc.Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s: %s", resp.Error.Message, resp.Error.Data)
	}
	return resp.Result, nil
}

func (c *client) Health() (json.RawMessage, error) {
	return c.SendPostRequest("health", nil)
}

func (c *client) Addresses() (map[swap.Chain]string, error) {
	result, err := c.SendPostRequest("addresses", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	addrs := map[swap.Chain]string{}
	if err := json.Unmarshal(result, &addrs); err != nil {
		return nil, err
	}
	return addrs, nil
}

func (c *client) ListSwaps(states ...swap.State) ([]rpc.SwapView, error) {
	jsonData, err := json.Marshal(struct {
		States []swap.State `json:"states,omitempty"`
	}{States: states})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	result, err := c.SendPostRequest("swap_list", jsonData)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	var views []rpc.SwapView
	if err := json.Unmarshal(result, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (c *client) SwapStatus(swapID string) (rpc.SwapView, error) {
	jsonData, err := json.Marshal(rpc.SwapIDParams{SwapID: swapID})
	if err != nil {
		return rpc.SwapView{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	result, err := c.SendPostRequest("swap_status", jsonData)
	if err != nil {
		return rpc.SwapView{}, fmt.Errorf("failed to send request: %w", err)
	}
	view := rpc.SwapView{}
	if err := json.Unmarshal(result, &view); err != nil {
		return rpc.SwapView{}, err
	}
	return view, nil
}
