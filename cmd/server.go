/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/api"
	"github.com/aalbahar80/rems-ai-sub000/internal/config"
	"github.com/aalbahar80/rems-ai-sub000/internal/container"
	"github.com/aalbahar80/rems-ai-sub000/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the maintenance order API server.
The server listens on the configured host and port and serves the
maintenance order endpoints, the order event websocket, /health,
/metrics and the swagger UI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		// 2. 初始化日志
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// 配置文件变更时热更新日志级别
		if configPath != "" {
			watcher := config.NewWatcher(cfg, configPath, logger)
			watcher.OnChange(func(newCfg *config.Config) {
				level := logging.ParseLevel(newCfg.Log.Level)
				logger.SetLevel(level)
				logger.WithField("level", level.String()).Info("log level reloaded")
			})
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("failed to watch config file")
			}
			defer watcher.Stop()
		}

		// 3. 链路追踪
		tracing := false
		if cfg.Tracing.Enabled {
			tracer, err := api.InitTracing(cfg.Tracing.JaegerEndpoint)
			if err != nil {
				logger.WithError(err).Warn("failed to initialize tracing, continuing without it")
			} else {
				tracing = true
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = tracer.Shutdown(ctx)
				}()
			}
		}

		// 4. 初始化容器
		ctr, err := container.NewContainer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 5. 设置路由
		router := api.SetupRoutes(api.RouterDeps{
			Config:       cfg,
			DB:           ctr.DB(),
			OrderService: ctr.OrderService(),
			Logger:       logger,
			Hub:          ctr.Hub(),
			Tracing:      tracing,
		})

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case sig := <-quit:
			logger.WithField("signal", sig.String()).Info("shutting down server")
		}

		timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		logger.Info("server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}
