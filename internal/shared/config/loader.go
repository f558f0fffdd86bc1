package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	hooksMu sync.Mutex
	hooks   []func()
)

// OnChange 注册配置热更新后的回调，回调在 viper 的监听 goroutine 上执行。
func OnChange(fn func()) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = append(hooks, fn)
}

func runHooks() {
	hooksMu.Lock()
	fns := append([]func(){}, hooks...)
	hooksMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func newViper(configPath string, o options) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	for k, val := range o.defaults {
		v.SetDefault(k, val)
	}
	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return v
}

// load 在日志初始化之前执行，变更提示只能走标准库 log。
func load(configPath string, out any, o options) {
	if !fileExist(configPath) {
		panic(fmt.Sprintf("config file not exist, configPath=%v", configPath))
	}

	v := newViper(configPath, o)
	if err := v.ReadInConfig(); err != nil {
		panic(err)
	}
	if err := v.Unmarshal(out); err != nil {
		panic(err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("配置文件变更: %s %s", e.Name, e.Op)
		if err := v.Unmarshal(out); err != nil {
			log.Printf("配置解析失败，沿用旧配置: %v", err)
			return
		}
		runHooks()
	})
	v.WatchConfig()
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
