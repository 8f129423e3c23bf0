package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitget-grid-bot-go/internal/models"
	"bitget-grid-bot-go/internal/signer"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.bitget.com"

	tickerPath = "/api/spot/v1/market/ticker"
	ordersPath = "/api/spot/v1/trade/orders"

	// Bitget 以业务码而非HTTP状态码表达成功
	successCode = "00000"
)

// authErrorCodes 列出交易所返回的签名/凭证类错误码。
// 这类错误在每次调用时都会重现，需要与一般业务错误区分开来。
var authErrorCodes = map[string]bool{
	"40006": true, // Invalid ACCESS_KEY
	"40008": true, // Request timestamp expired
	"40009": true, // sign signature error
	"40011": true, // Invalid ACCESS_PASSPHRASE
	"40012": true, // apikey/password is incorrect
	"40037": true, // Apikey does not exist
}

// LiveExchange 实现了 Exchange 接口，用于与真实的 Bitget 现货接口交互。
// 每次调用都是一次有界超时的网络请求，失败不做本地重试，直接交给调用方处理。
type LiveExchange struct {
	creds      models.Credentials
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLiveExchange 创建一个新的 LiveExchange 实例。
func NewLiveExchange(creds models.Credentials, baseURL string, logger *zap.Logger) *LiveExchange {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &LiveExchange{
		creds:      creds,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// venueResponse 是交易所所有应答的公共外层结构
type venueResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// orderRequest 是下单请求体。字段顺序即序列化顺序，参与签名，不可调整。
type orderRequest struct {
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	TimeInForce string `json:"timeInForce"`
}

// GetCurrentPrice 查询指定交易对的最新成交价。公共接口，无需签名。
func (e *LiveExchange) GetCurrentPrice(symbol string) (float64, error) {
	url := fmt.Sprintf("%s%s?symbol=%s", e.baseURL, tickerPath, symbol)
	resp, err := e.httpClient.Get(url)
	if err != nil {
		return 0, &models.NetworkError{Op: "获取行情", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &models.NetworkError{Op: "读取行情响应", Err: err}
	}

	if err := e.checkResponse(resp.StatusCode, body); err != nil {
		return 0, err
	}

	var ticker struct {
		Close string `json:"close"`
	}
	var outer venueResponse
	if err := json.Unmarshal(body, &outer); err != nil {
		return 0, &models.VenueError{Code: "parse", Msg: fmt.Sprintf("无法解析行情响应: %v", err)}
	}
	if err := json.Unmarshal(outer.Data, &ticker); err != nil {
		return 0, &models.VenueError{Code: "parse", Msg: fmt.Sprintf("无法解析行情数据: %v", err)}
	}

	price, err := strconv.ParseFloat(ticker.Close, 64)
	if err != nil || price <= 0 {
		return 0, &models.VenueError{Code: "parse", Msg: fmt.Sprintf("无效的价格值: %q", ticker.Close)}
	}
	return price, nil
}

// PlaceOrder 提交一张限价单。私有接口，请求体参与签名。
func (e *LiveExchange) PlaceOrder(symbol string, side models.Side, price, quantity float64) (*models.Order, error) {
	reqBody := orderRequest{
		Symbol:      symbol,
		Side:        strings.ToLower(string(side)),
		OrderType:   "limit",
		Price:       strconv.FormatFloat(price, 'f', -1, 64),
		Size:        strconv.FormatFloat(quantity, 'f', -1, 64),
		TimeInForce: "GTC",
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化下单请求失败: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signature := signer.Sign(e.creds.APISecret, timestamp, http.MethodPost, ordersPath, string(bodyBytes))

	req, err := http.NewRequest(http.MethodPost, e.baseURL+ordersPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("创建下单请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ACCESS-KEY", e.creds.APIKey)
	req.Header.Set("ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("ACCESS-PASSPHRASE", e.creds.Passphrase)
	req.Header.Set("ACCESS-SIGN", signature)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &models.NetworkError{Op: "下单", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.NetworkError{Op: "读取下单响应", Err: err}
	}

	if err := e.checkResponse(resp.StatusCode, respBody); err != nil {
		e.logger.Error("下单被交易所拒绝",
			zap.String("symbol", symbol),
			zap.String("side", string(side)),
			zap.Float64("price", price),
			zap.Error(err))
		return nil, err
	}

	var outer venueResponse
	var data struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(respBody, &outer); err != nil {
		return nil, &models.VenueError{Code: "parse", Msg: fmt.Sprintf("无法解析下单响应: %v", err)}
	}
	if err := json.Unmarshal(outer.Data, &data); err != nil || data.OrderID == "" {
		return nil, &models.VenueError{Code: "parse", Msg: "下单响应缺少 orderId"}
	}

	return &models.Order{ID: data.OrderID, Price: price, Quantity: quantity}, nil
}

// checkResponse 把HTTP状态码与交易所业务码映射为错误分类。
// 成功时返回 nil；签名/凭证类失败映射为 AuthError，其余映射为 VenueError。
func (e *LiveExchange) checkResponse(statusCode int, body []byte) error {
	var outer venueResponse
	_ = json.Unmarshal(body, &outer)

	if outer.Code != "" && outer.Code != successCode {
		if authErrorCodes[outer.Code] {
			return &models.AuthError{Msg: fmt.Sprintf("code=%s, msg=%s", outer.Code, outer.Msg)}
		}
		return &models.VenueError{Code: outer.Code, Msg: outer.Msg}
	}

	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return &models.AuthError{Msg: fmt.Sprintf("HTTP %d: %s", statusCode, string(body))}
	}
	if statusCode != http.StatusOK {
		return &models.VenueError{Code: strconv.Itoa(statusCode), Msg: string(body)}
	}
	return nil
}
