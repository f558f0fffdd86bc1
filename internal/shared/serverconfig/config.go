package serverconfig

import (
	"os"

	"Strongholds/internal/shared/config"
)

const (
	defaultConfigRelPath = "configs/conf.yml"
	// EnvPrefix 下的环境变量覆盖配置文件，例如 STRONGHOLDS_REPLAY_BACKEND=memory。
	EnvPrefix = "STRONGHOLDS"
)

var Conf Config

// defaults 是配置文件缺省这些键时的取值。
var defaults = map[string]any{
	"log.level":                "info",
	"simserver.port":           8080,
	"simserver.ticket_ttl_s":   7200,
	"match.tick_rate":          30,
	"match.network_every":      3,
	"match.speed":              1,
	"match.accrual_mode":       "auto",
	"replay.backend":           "memory",
	"replay.flush_interval_ms": 1000,
	"mongodb.database":         "strongholds",
}

// Load 读取 cfgPath（为空时向上查找 configs/conf.yml）到 Conf，返回实际使用的文件路径。
func Load(cfgPath string) string {
	if cfgPath == "" {
		cfgPath = defaultConfigRelPath
	}
	path := config.Load(cfgPath, &Conf, config.WithDefaults(defaults), config.WithEnvPrefix(EnvPrefix))
	// 环境变量优先；未设置时回填配置里的 jwt_secret，本地开发不必额外导出
	if os.Getenv("JWT_SECRET") == "" && Conf.JWTSecret != "" {
		_ = os.Setenv("JWT_SECRET", Conf.JWTSecret)
	}
	return path
}
