package testtool

import (
	"net/http"
	_ "net/http/pprof" // 匯入後會自動註冊 pprof endpoint

	"watch_earn_service/pkg/config"
	"watch_earn_service/pkg/logger"

	"go.uber.org/zap"
)

// StartPprof 非 production 環境時在 addr 啟動 pprof 監控伺服器
func StartPprof(addr string) {
	if addr == "" {
		return
	}
	if config.IsProduction() {
		logger.Log.Info("Production environment detected, pprof is disabled.")
		return
	}

	go func() {
		logger.Log.Info("Starting pprof server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Log.Errorf("pprof server failed:", err)
		}
	}()
}
