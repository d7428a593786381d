package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Watcher 配置文件监听器
// 配置文件变更时重新解析并通知所有回调
type Watcher struct {
	viper     *viper.Viper
	logger    logrus.FieldLogger
	config    *Config
	callbacks []func(*Config)
	mu        sync.RWMutex
	stopped   bool
}

// NewWatcher 创建配置监听器
func NewWatcher(cfg *Config, configPath string, logger logrus.FieldLogger) *Watcher {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Watcher{
		viper:  v,
		logger: logger,
		config: cfg,
	}
}

// OnChange 注册配置变更回调
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start 启动配置监听
func (w *Watcher) Start() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	w.viper.OnConfigChange(func(e fsnotify.Event) {
		w.mu.RLock()
		stopped := w.stopped
		w.mu.RUnlock()
		if stopped {
			return
		}

		var next Config
		if err := w.viper.Unmarshal(&next); err != nil {
			w.logger.WithError(err).Warn("failed to reload config")
			return
		}
		if err := next.Validate(); err != nil {
			w.logger.WithError(err).Warn("ignoring invalid config change")
			return
		}

		w.mu.Lock()
		w.config = &next
		callbacks := make([]func(*Config), len(w.callbacks))
		copy(callbacks, w.callbacks)
		w.mu.Unlock()

		w.logger.WithField("file", e.Name).Info("config reloaded")

		// 在锁外执行回调
		for _, callback := range callbacks {
			callback(&next)
		}
	})
	w.viper.WatchConfig()

	return nil
}

// Stop 停止处理变更通知
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
}

// Config 返回当前配置
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}
