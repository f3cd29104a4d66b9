// Package main 提供 fabric 命令行入口
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
