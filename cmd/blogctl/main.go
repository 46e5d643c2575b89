// Package main は管理用 CLI blogctl のエントリーポイントです。
package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/webblog/internal/cli"
)

func main() {
	cobra.CheckErr(cli.NewRootCommand().Execute())
}
