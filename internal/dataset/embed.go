package dataset

import (
	"embed"
	"io/fs"
)

// 内置参考数据：省与区两级完整，县/联合区/片区需由目录或数据库数据源提供
//
//go:embed data/*.json
var embedded embed.FS

// Embedded：随二进制分发的内置数据源
func Embedded() Source {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// data 目录由 go:embed 保证存在
		panic(err)
	}
	return FS("embedded", sub)
}
