// Package main はメールSDKを操作するCLIツールのエントリポイント。
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	output            string
	timeout           time.Duration
	archivePassphrase string
)

func main() {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "emailctl",
		Short:         "Sealed email client CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// グローバルフラグ
	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Operation timeout")

	// サブコマンド登録
	rootCmd.AddCommand(addressesCmd())
	rootCmd.AddCommand(messagesCmd())
	rootCmd.AddCommand(foldersCmd())
	rootCmd.AddCommand(draftsCmd())
	rootCmd.AddCommand(blocklistCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// versionCmd はバージョン情報を表示する。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("emailctl version %s\n", version)
		},
	}
}
