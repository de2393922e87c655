// Package config は環境変数からアプリケーション設定を読み込みます。
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cast"
)

const (
	DefaultPort        = "8080"
	DefaultWeightsPath = "./weights/Meso4_DF.json"
	DefaultCacheTTL    = 10 * time.Minute
	DefaultGinMode     = "release"
)

// Config はサーバー・CLIの設定を保持します。
type Config struct {
	Port          string // HTTPの待ち受けポート
	WeightsPath   string // 学習済み重みアーティファクトのパス
	RedisHost     string // 空ならキャッシュは無効
	RedisPort     string
	RedisPassword string
	CacheEnabled  bool          // 判定結果のRedisキャッシュを使うか
	CacheTTL      time.Duration // キャッシュの有効期間
	GinMode       string        // debug / release / test
}

// Load は環境変数から設定を読み込みます。未設定・不正値はデフォルトにフォールバックします。
func Load() Config {
	return Config{
		Port:          getEnv("PORT", DefaultPort),
		WeightsPath:   getEnv("WEIGHTS_PATH", DefaultWeightsPath),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheEnabled:  getBool("CACHE_ENABLED", false),
		CacheTTL:      getDuration("CACHE_TTL", DefaultCacheTTL),
		GinMode:       getGinMode("GIN_MODE", DefaultGinMode),
	}
}

// RedisAddr は host:port 形式のRedisアドレスを返します。
func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		slog.Warn("環境変数の値が不正なためデフォルトを使用", "key", k, "value", v, "default", def)
		return def
	}
	return b
}

// getGinMode は gin が受け付けるモード（debug / release / test）だけを返します。
func getGinMode(k, def string) string {
	v := os.Getenv(k)
	switch v {
	case "":
		return def
	case "debug", "release", "test":
		return v
	default:
		slog.Warn("環境変数の値が不正なためデフォルトを使用", "key", k, "value", v, "default", def)
		return def
	}
}

// getDuration は "30s" のような期間文字列か、秒数の整数を受け付けます。
func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if n, err := cast.ToInt64E(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := cast.ToDurationE(v)
	if err != nil || d <= 0 {
		slog.Warn("環境変数の値が不正なためデフォルトを使用", "key", k, "value", v, "default", def)
		return def
	}
	return d
}
