// 包 dataset：参考数据的加载入口，把各类数据源统一为只读快照 geo.Dataset
package dataset

import (
	"context"
	"errors"

	"bd-geo/internal/geo"
)

var (
	// ErrMissingFile 表示数据目录缺少某个参考文件
	ErrMissingFile = errors.New("dataset file missing")
	// ErrUnknownSource 表示配置了未知的数据源类型
	ErrUnknownSource = errors.New("unknown dataset source")
	// ErrNotConfigured 表示所选数据源缺少必要的连接参数
	ErrNotConfigured = errors.New("dataset source not configured")
)

// 参考数据文件名，与上游数据包保持一致
const (
	DivisionsFile    = "divisions.json"
	DistrictsFile    = "districts.json"
	UpazilasFile     = "upazilas.json"
	UnionsFile       = "unions.json"
	DistrictAreaFile = "district-area.json"
)

// 文档注释：数据源统一契约
// 约束：Load 每次返回独立构建的快照；调用方拿到后不得修改。
type Source interface {
	Name() string
	Load(ctx context.Context) (*geo.Dataset, error)
}
