package models

import "time"

// Config 结构体定义了机器人的所有配置参数
type Config struct {
	Symbol            string    `json:"symbol"`             // 交易对，如 "BTCUSDT_SPBL"
	LowerPrice        float64   `json:"lower_price"`        // 网格区间下限
	UpperPrice        float64   `json:"upper_price"`        // 网格区间上限
	GridCount         int       `json:"grid_count"`         // 网格数量（产生 grid_count+1 条网格线）
	Investment        float64   `json:"investment"`         // 总投资额 (USDT)，均分到每条网格线
	PollIntervalMs    int       `json:"poll_interval_ms"`   // 价格轮询间隔（毫秒）
	ProximityFraction float64   `json:"proximity_fraction"` // 触发容差比例，如 0.005 表示 0.5%
	APIBaseURL        string    `json:"api_base_url"`       // REST API 基础地址
	EventServerAddr   string    `json:"event_server_addr"`  // 行情/成交事件推送服务监听地址，留空则不启动
	LogConfig         LogConfig `json:"log"`                // 日志配置
}

// PollInterval 返回轮询间隔对应的 time.Duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// LogConfig 定义了日志相关的配置
type LogConfig struct {
	Level      string `json:"level"`       // 日志级别, e.g., "debug", "info", "warn", "error"
	Output     string `json:"output"`      // 输出模式: "console", "file", "both"
	File       string `json:"file"`        // 日志文件路径
	MaxSize    int    `json:"max_size"`    // 单个日志文件的最大大小 (MB)
	MaxBackups int    `json:"max_backups"` // 保留的旧日志文件最大数量
	MaxAge     int    `json:"max_age"`     // 旧日志文件的最大保留天数
	Compress   bool   `json:"compress"`    // 是否压缩旧日志文件
}

// Credentials 保存私有接口所需的三项凭证。
// 任意一项缺失时，交易所客户端进入模拟模式，该选择在构造时一次性确定。
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// IsComplete 判断三项凭证是否齐全
func (c Credentials) IsComplete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.Passphrase != ""
}

// Side 定义了交易方向的类型
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// GridLevel 代表网格中的一条价格线，计算完成后不可变
type GridLevel struct {
	Price    float64 `json:"price"`    // 网格线价格，严格递增
	IsBuy    bool    `json:"is_buy"`   // true 为买入线；最低一条恒为买入，向上交替
	Quantity float64 `json:"quantity"` // 挂单数量 = 单格投资额 / 价格
}

// Side 返回该网格线对应的交易方向
func (g GridLevel) Side() Side {
	if g.IsBuy {
		return Buy
	}
	return Sell
}

// Order 定义了交易所返回的订单信息
type Order struct {
	ID       string  `json:"orderId"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Trade 记录一次网格线触发产生的成交。
// 创建后不再修改；LevelPrice 是触发它的那条网格线的价格，作为幂等键使用。
type Trade struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Side       Side      `json:"side"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	LevelPrice float64   `json:"level_price"`
}
