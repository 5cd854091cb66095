package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"bd-geo/internal/geo"
	"bd-geo/internal/logger"
)

// 文档注释：从文件系统加载五个参考 JSON 文件
// 约束：每个文件都是扁平记录数组；任一文件缺失返回 ErrMissingFile，格式错误原样包装返回。
type fsSource struct {
	name string
	fsys fs.FS
}

// Dir：以目录为根的数据源
func Dir(path string) Source {
	return &fsSource{name: "dir:" + path, fsys: os.DirFS(path)}
}

// FS：以任意 fs.FS 为根的数据源，用于嵌入数据与测试
func FS(name string, fsys fs.FS) Source {
	return &fsSource{name: name, fsys: fsys}
}

func (s *fsSource) Name() string { return s.name }

func (s *fsSource) Load(ctx context.Context) (*geo.Dataset, error) {
	var ds geo.Dataset
	files := []struct {
		name string
		dst  any
	}{
		{DivisionsFile, &ds.Divisions},
		{DistrictsFile, &ds.Districts},
		{UpazilasFile, &ds.Upazilas},
		{UnionsFile, &ds.Unions},
		{DistrictAreaFile, &ds.DistrictAreas},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readJSON(s.fsys, f.name, f.dst); err != nil {
			return nil, err
		}
		logger.L().Debug("dataset_file_read", "source", s.name, "file", f.name)
	}
	return &ds, nil
}

func readJSON(fsys fs.FS, name string, dst any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingFile, name)
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}
