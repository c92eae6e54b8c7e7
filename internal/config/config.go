package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error

	UploadDir string // 画像アップロードの保存先

	AMQPURL string // 監査イベント発行用。空なら発行しない。

	// 手数料率。元システムは管理者30%と出品者5%で食い違っており、
	// その不一致は意図的かどうか不明なので設定で差し替えられるようにしてある。
	CommissionRateAdmin  float64 // COMMISSION_RATE_ADMIN（default 0.30）
	CommissionRateSeller float64 // COMMISSION_RATE_SELLER（default 0.05）
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:      os.Getenv("PORT"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		GoEnv:     getenvDefault("GO_ENV", "dev"),
		LogLevel:  getenvDefault("LOG_LEVEL", "info"),
		UploadDir: getenvDefault("UPLOAD_DIR", "./uploads"),
		AMQPURL:   os.Getenv("AMQP_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	adminRate, err := parseRate("COMMISSION_RATE_ADMIN", 0.30)
	if err != nil {
		return Config{}, err
	}
	sellerRate, err := parseRate("COMMISSION_RATE_SELLER", 0.05)
	if err != nil {
		return Config{}, err
	}
	cfg.CommissionRateAdmin = adminRate
	cfg.CommissionRateSeller = sellerRate

	return cfg, nil
}

func getenvDefault(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func parseRate(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%s must be between 0 and 1", key)
	}
	return f, nil
}
