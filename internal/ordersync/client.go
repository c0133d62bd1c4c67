package ordersync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mcpl-automation/coilprint-backend/pkg/config"
)

// WorkOrderPayload is one work order as the RESTlet returns it.
type WorkOrderPayload struct {
	WorkOrderNo      string `json:"work_order_no"`
	MCPLPartCode     string `json:"mcpl_part_code"`
	CustomerPartCode string `json:"customer_part_code"`
	CustomerName     string `json:"customer_name"`
	TotalQuantity    string `json:"total_quantity"`
	MfgProcessName   string `json:"mfg_process_name"`
	Location         string `json:"location"`
	WireType         string `json:"wire_type"`
	Gauge            string `json:"guage"`
	MainColor        string `json:"main_color"`
	BiColor          string `json:"bi_color"`
	WorkOrderDate    string `json:"work_order_date"`

	raw json.RawMessage
}

// Raw returns the order exactly as received, for the cached raw_json_data
// column.
func (p WorkOrderPayload) Raw() string {
	if len(p.raw) == 0 {
		return "{}"
	}
	return string(p.raw)
}

type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client fetches work orders from the NetSuite RESTlet.
type Client struct {
	cfg        config.NetSuiteConfig
	tokens     tokenProvider
	httpClient *http.Client
	restletURL string
}

// NewClient prepares the RESTlet client. The restletURL override is used by
// tests; empty selects the account's endpoint.
func NewClient(cfg config.NetSuiteConfig, tokens tokenProvider, httpClient *http.Client, restletURL string) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token provider required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if restletURL == "" {
		if cfg.AccountID == "" {
			return nil, fmt.Errorf("netsuite account id is required")
		}
		restletURL = fmt.Sprintf("https://%s.restlets.api.netsuite.com/app/site/hosting/restlet.nl", cfg.AccountID)
	}
	return &Client{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: httpClient,
		restletURL: restletURL,
	}, nil
}

// FetchWorkOrders pulls every work order created on or after createdAtMin
// (dd/mm/yyyy, per the RESTlet contract).
func (c *Client) FetchWorkOrders(ctx context.Context, createdAtMin string) ([]WorkOrderPayload, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring access token: %w", err)
	}

	query := url.Values{}
	query.Set("script", strconv.Itoa(c.cfg.ScriptID))
	query.Set("deploy", strconv.Itoa(c.cfg.DeployID))
	query.Set("created_at_min", createdAtMin)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.restletURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building restlet request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("restlet request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("reading restlet response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("restlet returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope struct {
		WorkOrderList []json.RawMessage `json:"Work_order_list"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding restlet response: %w", err)
	}

	orders := make([]WorkOrderPayload, 0, len(envelope.WorkOrderList))
	for _, raw := range envelope.WorkOrderList {
		var order WorkOrderPayload
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, fmt.Errorf("decoding work order: %w", err)
		}
		order.raw = raw
		orders = append(orders, order)
	}
	return orders, nil
}
