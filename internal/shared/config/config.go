package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultConfigRelPath = "configs/conf.yml"

type options struct {
	defaults  map[string]any
	envPrefix string
}

type Option func(*options)

// WithDefaults 为配置文件里缺省的键提供默认值，键用点号分隔，例如 "match.tick_rate"。
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) { o.defaults = defaults }
}

// WithEnvPrefix 允许用环境变量覆盖配置文件：prefix 为 "SH" 时 match.tick_rate 对应 SH_MATCH_TICK_RATE。
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = strings.ToUpper(prefix) }
}

// Load 解析配置到 out 并监听文件变更，返回实际使用的配置文件路径。
// cfgName 存在时优先使用，否则从工作目录向上查找 configs/conf.yml；都找不到时 panic。
func Load(cfgName string, out any, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	curDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	path := ""
	if cfgName != "" {
		path = cfgName
		if !filepath.IsAbs(path) {
			path = filepath.Join(curDir, cfgName)
		}
	}
	if path == "" || !fileExist(path) {
		path = findConfigUpward(curDir)
	}
	load(path, out, o)
	return path
}

func findConfigUpward(startDir string) string {
	for dir := startDir; ; {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("config file not exist, searched " + defaultConfigRelPath + " from: " + startDir)
		}
		dir = parent
	}
}
