package main

import (
	"bitget-grid-bot-go/internal/config"
	"bitget-grid-bot-go/internal/engine"
	"bitget-grid-bot-go/internal/events"
	"bitget-grid-bot-go/internal/exchange"
	"bitget-grid-bot-go/internal/logger"
	"bitget-grid-bot-go/internal/models"
	"bitget-grid-bot-go/internal/reporter"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// --- 命令行参数定义 ---
	configPath := flag.String("config", "config.json", "path to the config file")
	flag.Parse()

	// --- 初始化日志 (提前) ---
	// 在加载.env和配置文件阶段先使用一个默认的控制台logger
	logger.InitLogger(models.LogConfig{Level: "info", Output: "console"})

	// --- 加载 .env 文件 ---
	if err := godotenv.Load(); err != nil {
		logger.S().Info("未找到 .env 文件，将从系统环境变量中读取。")
	} else {
		logger.S().Info("成功从 .env 文件加载配置。")
	}

	// --- 加载 JSON 配置 ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.S().Fatalf("无法加载配置文件: %v", err)
	}

	// --- 使用文件中的配置重新初始化日志 ---
	logger.InitLogger(cfg.LogConfig)
	defer logger.S().Sync()

	// --- 选择交易所实现 ---
	// 凭证不全时进入模拟模式：不发起任何网络请求，价格在网格区间内随机生成
	creds := config.CredentialsFromEnv()
	mode := "live"
	if !creds.IsComplete() {
		mode = "simulation"
		logger.S().Warn("BITGET_API_KEY/BITGET_API_SECRET/BITGET_PASSPHRASE 未配置齐全，以模拟模式运行。")
	}
	ex := exchange.New(cfg, creds, logger.L())

	// --- 事件推送与指标服务 ---
	priceHub := events.NewHub[events.PriceEvent]()
	tradeHub := events.NewHub[events.TradeEvent]()
	if cfg.EventServerAddr != "" {
		srv := events.NewServer(priceHub, tradeHub, logger.L())
		mux := srv.Routes()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.S().Infof("事件推送服务监听于 %s (/ws/price, /ws/trades, /metrics)", cfg.EventServerAddr)
			if err := http.ListenAndServe(cfg.EventServerAddr, mux); err != nil {
				logger.S().Errorf("事件推送服务退出: %v", err)
			}
		}()
	}

	// --- 启动引擎 ---
	eng := engine.NewPollingEngine(ex, mode, priceHub, tradeHub, logger.L())
	if err := eng.Start(cfg); err != nil {
		logger.S().Fatalf("引擎启动失败: %v", err)
	}

	// 等待中断信号以实现优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	eng.Stop()
	reporter.PrintSessionReport(os.Stdout, cfg.Symbol, eng.Ledger())
	logger.S().Info("机器人已成功停止。")
}
