/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rems-maintenance",
	Short: "Maintenance order lifecycle API server",
	Long: `rems-maintenance runs the maintenance order service of the real estate
management system: order intake, vendor assignment, approval and the
status lifecycle, with audit history and webhook events.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadDotEnv)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default: search ./config.yaml, ./config, $HOME/.rems-maintenance)")
}

// loadDotEnv 加载 .env,文件不存在时忽略
// 已存在的环境变量不会被覆盖
func loadDotEnv() {
	_ = godotenv.Load()
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}
