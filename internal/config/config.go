package config

import (
	"bitget-grid-bot-go/internal/models"
	"encoding/json"
	"os"
)

// 未在配置文件中给出时使用的运行参数默认值
const (
	DefaultPollIntervalMs    = 5000
	DefaultProximityFraction = 0.005
)

// LoadConfig 从指定路径加载JSON配置文件并解析到Config结构体中
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	config := &models.Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	applyDefaults(config)
	return config, nil
}

func applyDefaults(cfg *models.Config) {
	if cfg.PollIntervalMs <= 0 {
		cfg.PollIntervalMs = DefaultPollIntervalMs
	}
	if cfg.ProximityFraction <= 0 {
		cfg.ProximityFraction = DefaultProximityFraction
	}
}

// Validate 校验启动所需的全部配置项。
// 任一项不合法即返回 *models.ConfigError，调用方不得部分应用配置。
func Validate(cfg *models.Config) error {
	if cfg.Symbol == "" {
		return &models.ConfigError{Field: "symbol", Reason: "不能为空"}
	}
	if cfg.LowerPrice <= 0 {
		return &models.ConfigError{Field: "lower_price", Reason: "必须为正数"}
	}
	if cfg.UpperPrice <= cfg.LowerPrice {
		return &models.ConfigError{Field: "upper_price", Reason: "必须大于 lower_price"}
	}
	if cfg.GridCount < 1 {
		return &models.ConfigError{Field: "grid_count", Reason: "必须不小于 1"}
	}
	if cfg.Investment <= 0 {
		return &models.ConfigError{Field: "investment", Reason: "必须为正数"}
	}
	if cfg.ProximityFraction <= 0 || cfg.ProximityFraction >= 1 {
		return &models.ConfigError{Field: "proximity_fraction", Reason: "必须在 (0, 1) 区间内"}
	}
	return nil
}

// CredentialsFromEnv 从环境变量读取交易所凭证。
// 三项中任意一项缺失都会使交易所客户端进入模拟模式，这里不视为错误。
func CredentialsFromEnv() models.Credentials {
	return models.Credentials{
		APIKey:     os.Getenv("BITGET_API_KEY"),
		APISecret:  os.Getenv("BITGET_API_SECRET"),
		Passphrase: os.Getenv("BITGET_PASSPHRASE"),
	}
}
