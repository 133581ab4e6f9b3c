package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pumpwatch/internal/adapters/exchanges"
	"pumpwatch/internal/adapters/exchanges/ratelimit"
	"pumpwatch/internal/domain/portfolio"
)

const (
	spotBaseURL         = "https://api.binance.com"
	spotTestnetBaseURL  = "https://testnet.binance.vision"
	defaultRecvWindowMs = 5000
	defaultHTTPTimeout  = 10 * time.Second
)

// Config configures the Binance spot client.
type Config struct {
	APIKey    string
	SecretKey string
	Testnet   bool

	BaseURL    string // overrides the default endpoint, used in tests
	HTTPClient *http.Client
	RecvWindow time.Duration
}

// NewClient creates a new Binance spot adapter.
func NewClient(cfg Config) (exchanges.Exchange, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("binance api key and secret key are required")
	}
	if cfg.RecvWindow == 0 {
		cfg.RecvWindow = defaultRecvWindowMs * time.Millisecond
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &client{
		cfg:        cfg,
		httpClient: httpClient,
		limiters:   ratelimit.NewBinanceLimiters(),
		rules:      make(map[string]*portfolio.TradingRule),
	}, nil
}

type client struct {
	cfg        Config
	httpClient *http.Client
	limiters   *ratelimit.MultiLimiter

	// Trading rules change rarely, so they are cached for the process
	// lifetime. Balances and prices are never cached.
	rulesMu sync.RWMutex
	rules   map[string]*portfolio.TradingRule
}

func (c *client) Name() string {
	return "binance"
}

func (c *client) GetPriceSnapshot(ctx context.Context) (portfolio.PriceSnapshot, error) {
	data, err := c.get(ctx, "/api/v3/ticker/price", url.Values{})
	if err != nil {
		return nil, err
	}

	var res []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}

	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	snapshot := make(portfolio.PriceSnapshot, len(res))
	for _, t := range res {
		snapshot[t.Symbol] = parseDecimal(t.Price)
	}

	return snapshot, nil
}

func (c *client) GetTradingRule(ctx context.Context, symbol string) (*portfolio.TradingRule, error) {
	symbol = normalizeSymbol(symbol)

	c.rulesMu.RLock()
	if rule, ok := c.rules[symbol]; ok {
		c.rulesMu.RUnlock()
		return rule, nil
	}
	c.rulesMu.RUnlock()

	params := url.Values{"symbol": []string{symbol}}
	data, err := c.get(ctx, "/api/v3/exchangeInfo", params)
	if err != nil {
		return nil, err
	}

	var res struct {
		Symbols []struct {
			Symbol  string `json:"symbol"`
			Status  string `json:"status"`
			Filters []struct {
				FilterType  string `json:"filterType"`
				StepSize    string `json:"stepSize"`
				MinQty      string `json:"minQty"`
				MinNotional string `json:"minNotional"`
			} `json:"filters"`
		} `json:"symbols"`
	}

	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	if len(res.Symbols) == 0 {
		return nil, exchanges.ErrSymbolNotFound
	}

	rule := &portfolio.TradingRule{Symbol: res.Symbols[0].Symbol}
	for _, f := range res.Symbols[0].Filters {
		switch f.FilterType {
		case "LOT_SIZE":
			rule.StepSize = parseDecimal(f.StepSize)
			rule.MinQty = parseDecimal(f.MinQty)
		case "NOTIONAL", "MIN_NOTIONAL":
			rule.MinNotional = parseDecimal(f.MinNotional)
		}
	}

	c.rulesMu.Lock()
	c.rules[symbol] = rule
	c.rulesMu.Unlock()

	return rule, nil
}

func (c *client) GetBalances(ctx context.Context) ([]portfolio.AssetBalance, error) {
	data, err := c.signed(ctx, http.MethodGet, "/api/v3/account", url.Values{})
	if err != nil {
		return nil, err
	}

	var res struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}

	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	balances := make([]portfolio.AssetBalance, 0, len(res.Balances))
	for _, b := range res.Balances {
		balances = append(balances, portfolio.AssetBalance{
			Asset:  b.Asset,
			Free:   parseDecimal(b.Free),
			Locked: parseDecimal(b.Locked),
		})
	}

	return balances, nil
}

func (c *client) GetOpenOrders(ctx context.Context) ([]exchanges.OpenOrder, error) {
	data, err := c.signed(ctx, http.MethodGet, "/api/v3/openOrders", url.Values{})
	if err != nil {
		return nil, err
	}

	var res []struct {
		OrderID int64  `json:"orderId"`
		Symbol  string `json:"symbol"`
	}

	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	orders := make([]exchanges.OpenOrder, 0, len(res))
	for _, o := range res {
		orders = append(orders, exchanges.OpenOrder{
			Symbol:  o.Symbol,
			OrderID: strconv.FormatInt(o.OrderID, 10),
		})
	}

	return orders, nil
}

func (c *client) CancelOrder(ctx context.Context, symbol, orderID string) error {
	if symbol == "" || orderID == "" {
		return exchanges.ErrInvalidRequest
	}

	params := url.Values{
		"symbol":  []string{normalizeSymbol(symbol)},
		"orderId": []string{orderID},
	}

	if err := c.limiters.Wait(ctx, "order"); err != nil {
		return err
	}
	_, err := c.signed(ctx, http.MethodDelete, "/api/v3/order", params)
	return err
}

func (c *client) MarketSell(ctx context.Context, symbol string, quantity decimal.Decimal) error {
	if symbol == "" || !quantity.IsPositive() {
		return exchanges.ErrInvalidRequest
	}

	params := url.Values{
		"symbol":           []string{normalizeSymbol(symbol)},
		"side":             []string{"SELL"},
		"type":             []string{"MARKET"},
		"quantity":         []string{quantity.String()},
		"newClientOrderId": []string{"pw-" + uuid.NewString()},
	}

	if err := c.limiters.Wait(ctx, "order"); err != nil {
		return err
	}
	_, err := c.signed(ctx, http.MethodPost, "/api/v3/order", params)
	return err
}

func (c *client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.doRequest(ctx, http.MethodGet, path, params, false)
}

func (c *client) signed(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	return c.doRequest(ctx, method, path, params, true)
}

func (c *client) doRequest(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error) {
	if err := c.limiters.Wait(ctx, "global"); err != nil {
		return nil, err
	}

	if params == nil {
		params = url.Values{}
	}

	var body io.Reader
	query := params.Encode()

	if signed {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		params.Set("recvWindow", strconv.FormatInt(c.cfg.RecvWindow.Milliseconds(), 10))
		signature := c.sign(params.Encode())
		params.Set("signature", signature)
		query = params.Encode()
	}

	reqURL := c.baseURL() + path

	switch method {
	case http.MethodGet, http.MethodDelete:
		if query != "" {
			reqURL = reqURL + "?" + query
		}
	default:
		body = strings.NewReader(query)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}

	if signed {
		req.Header.Set("X-MBX-APIKEY", c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, payload)
	}

	return payload, nil
}

func (c *client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return c.cfg.BaseURL
	}
	if c.cfg.Testnet {
		return spotTestnetBaseURL
	}
	return spotBaseURL
}

func (c *client) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	_, _ = mac.Write([]byte(payload))
	return fmt.Sprintf("%x", mac.Sum(nil))
}

func parseAPIError(status int, payload []byte) error {
	var apiErr struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Code != 0 {
		switch apiErr.Code {
		case -1003:
			return fmt.Errorf("%w: %s", exchanges.ErrRateLimited, apiErr.Msg)
		case -1121:
			return fmt.Errorf("%w: %s", exchanges.ErrSymbolNotFound, apiErr.Msg)
		}
		return fmt.Errorf("binance error %d: %s", apiErr.Code, apiErr.Msg)
	}
	return fmt.Errorf("binance http %d: %s", status, string(payload))
}

func parseDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}
