package dataset

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"bd-geo/internal/config"
	"bd-geo/internal/geo"
	"bd-geo/internal/logger"
	"bd-geo/internal/metrics"
	"bd-geo/internal/store"
	"bd-geo/internal/utils"
)

// 文档注释：按配置选择数据源
// 返回：数据源与关闭函数（释放数据库/Redis 连接，无连接时为空操作）。
// 约束：单一类型不隐式回退，目录或连接不可用时错误直接返回给调用方；
// 逗号分隔的列表（如 "dir,embedded"）按顺序组成 Chain，回退须显式配置。
func New(cfg config.Config) (Source, func() error, error) {
	if !strings.Contains(cfg.Source, ",") {
		return newSingle(cfg, cfg.Source)
	}
	var (
		list   []Source
		closes []func() error
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closes {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
	for _, kind := range strings.Split(cfg.Source, ",") {
		src, closeFn, err := newSingle(cfg, strings.TrimSpace(kind))
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		list = append(list, src)
		closes = append(closes, closeFn)
	}
	return Chain(list...), closeAll, nil
}

func newSingle(cfg config.Config, kind string) (Source, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(kind) {
	case "", "embedded":
		return Embedded(), noop, nil
	case "dir":
		return Dir(cfg.DataDir), noop, nil
	case "postgres":
		db, err := utils.OpenPostgres(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres: %w", err)
		}
		st := store.AttachDB(db, "postgres")
		return st, st.Close, nil
	case "sqlite":
		db, err := utils.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		st := store.AttachDB(db, "sqlite")
		return st, st.Close, nil
	case "redis":
		if cfg.Redis.Host == "" || cfg.Redis.Port == "" {
			return nil, nil, fmt.Errorf("%w: redis host/port empty", ErrNotConfigured)
		}
		rc := utils.OpenRedis(cfg.RedisAddr(), cfg.Redis.Pass, cfg.Redis.DB)
		return store.NewRedis(rc, cfg.Redis.Prefix), rc.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
}

// 文档注释：加载快照并记录日志与指标
// 约束：只在启动阶段调用一次；返回的快照交由 geo.NewLookup 持有。
func Load(ctx context.Context, src Source) (*geo.Dataset, error) {
	l := logger.L()
	t0 := time.Now()
	ds, err := src.Load(ctx)
	metrics.DatasetLoadDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(src.Name(), "fail").Inc()
		l.Error("dataset_load_error", "source", src.Name(), "err", err)
		return nil, err
	}
	metrics.DatasetLoadsTotal.WithLabelValues(src.Name(), "ok").Inc()
	counts := ds.Counts()
	attrs := []any{"source", src.Name(), "ms", time.Since(t0).Milliseconds()}
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		n := counts[k]
		metrics.DatasetRecords.WithLabelValues(k).Set(float64(n))
		attrs = append(attrs, k, n)
		if n == 0 {
			// 空集合会让对应查询对任何 id 都返回 []
			l.Warn("dataset_collection_empty", "source", src.Name(), "collection", k)
		}
	}
	l.Info("dataset_load_ok", attrs...)
	return ds, nil
}

// Open：New + Load + geo.NewLookup 的便捷组合，连接在加载完成后即释放
func Open(ctx context.Context, cfg config.Config) (*geo.Lookup, *geo.Dataset, error) {
	src, closeFn, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			logger.L().Warn("dataset_source_close_error", "source", src.Name(), "err", cerr)
		}
	}()
	ds, err := Load(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return geo.NewLookup(ds), ds, nil
}
