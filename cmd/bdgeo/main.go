package main

import (
	"os"

	"bd-geo/internal/logger"
)

// 命令行入口：读取配置、加载参考数据后执行单次查询，结果以 JSON 输出到标准输出
func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.L().Error("command_error", "err", err)
		os.Exit(1)
	}
}
