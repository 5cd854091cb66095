package dataset

import (
	"context"
	"errors"
	"strings"

	"bd-geo/internal/geo"
	"bd-geo/internal/logger"
)

type chainSource struct {
	list []Source
}

// Chain：按顺序尝试各数据源，首个成功者生效；nil 项跳过
func Chain(list ...Source) Source {
	return &chainSource{list: list}
}

func (c *chainSource) Name() string {
	var names []string
	for _, s := range c.list {
		if s != nil {
			names = append(names, s.Name())
		}
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *chainSource) Load(ctx context.Context) (*geo.Dataset, error) {
	var errs []error
	for _, s := range c.list {
		if s == nil {
			continue
		}
		ds, err := s.Load(ctx)
		if err == nil {
			return ds, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.L().Warn("dataset_source_fallback", "source", s.Name(), "err", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrUnknownSource
	}
	return nil, errors.Join(errs...)
}
