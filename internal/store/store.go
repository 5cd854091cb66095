// 包 store: 数据库与 Redis 中参考数据的只读访问层，实现 dataset.Source 契约
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"bd-geo/internal/geo"
	"bd-geo/internal/logger"
)

// ErrNoData 表示数据源可连通但没有省级数据
var ErrNoData = errors.New("no reference data")

// Store: 持有连接池，从 bdgeo_* 表读取完整快照
type Store struct {
	db     *sql.DB
	driver string
}

// AttachDB：driver 仅用于命名与日志（postgres / sqlite）
func AttachDB(db *sql.DB, driver string) *Store { return &Store{db: db, driver: driver} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Name() string { return s.driver }

// 文档注释：一次性读取五张表并构建快照
// 约束：各表按 seq 升序还原数据集顺序；省级为空视为 ErrNoData，其余表允许为空。
func (s *Store) Load(ctx context.Context) (*geo.Dataset, error) {
	logger.L().Debug("db_load_begin", "driver", s.driver)
	var ds geo.Dataset
	var err error
	if ds.Divisions, err = s.divisions(ctx); err != nil {
		return nil, err
	}
	if len(ds.Divisions) == 0 {
		return nil, ErrNoData
	}
	if ds.Districts, err = s.districts(ctx); err != nil {
		return nil, err
	}
	if ds.Upazilas, err = s.upazilas(ctx); err != nil {
		return nil, err
	}
	if ds.Unions, err = s.unions(ctx); err != nil {
		return nil, err
	}
	if ds.DistrictAreas, err = s.districtAreas(ctx); err != nil {
		return nil, err
	}
	logger.L().Debug("db_load_done", "driver", s.driver, "divisions", len(ds.Divisions), "districts", len(ds.Districts))
	return &ds, nil
}

func (s *Store) divisions(ctx context.Context) ([]geo.Division, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, bn_name, url FROM bdgeo_divisions ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query divisions: %w", err)
	}
	defer rows.Close()
	var out []geo.Division
	for rows.Next() {
		var d geo.Division
		if err := rows.Scan(&d.ID, &d.Name, &d.BnName, &d.URL); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) districts(ctx context.Context) ([]geo.District, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, division_id, name, bn_name, lat, lon, url FROM bdgeo_districts ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query districts: %w", err)
	}
	defer rows.Close()
	var out []geo.District
	for rows.Next() {
		var d geo.District
		if err := rows.Scan(&d.ID, &d.DivisionID, &d.Name, &d.BnName, &d.Lat, &d.Lon, &d.URL); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) upazilas(ctx context.Context) ([]geo.Upazila, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, district_id, name, bn_name, url FROM bdgeo_upazilas ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query upazilas: %w", err)
	}
	defer rows.Close()
	var out []geo.Upazila
	for rows.Next() {
		var u geo.Upazila
		if err := rows.Scan(&u.ID, &u.DistrictID, &u.Name, &u.BnName, &u.URL); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) unions(ctx context.Context) ([]geo.Union, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, upazilla_id, name, bn_name, url FROM bdgeo_unions ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query unions: %w", err)
	}
	defer rows.Close()
	var out []geo.Union
	for rows.Next() {
		var u geo.Union
		if err := rows.Scan(&u.ID, &u.UpazilaID, &u.Name, &u.BnName, &u.URL); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) districtAreas(ctx context.Context) ([]geo.DistrictArea, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT district_id, areas FROM bdgeo_district_areas ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query district areas: %w", err)
	}
	defer rows.Close()
	var out []geo.DistrictArea
	for rows.Next() {
		var a geo.DistrictArea
		var raw string
		if err := rows.Scan(&a.DistrictID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &a.Areas); err != nil {
			return nil, fmt.Errorf("decoding areas of district %s: %w", a.DistrictID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
