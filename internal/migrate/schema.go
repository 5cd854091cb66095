package migrate

import (
	"database/sql"

	"bd-geo/internal/logger"
)

// 约束：DDL 同时兼容 PostgreSQL 与 SQLite；seq 记录原数据集顺序，查询按 seq 排序还原。
// district_areas.areas 为 JSON 数组文本。
var stmts = []string{
	`CREATE TABLE IF NOT EXISTS bdgeo_divisions (
            seq INTEGER PRIMARY KEY,
            id TEXT NOT NULL,
            name TEXT NOT NULL,
            bn_name TEXT NOT NULL DEFAULT '',
            url TEXT NOT NULL DEFAULT ''
        )`,
	`CREATE TABLE IF NOT EXISTS bdgeo_districts (
            seq INTEGER PRIMARY KEY,
            id TEXT NOT NULL,
            division_id TEXT NOT NULL,
            name TEXT NOT NULL,
            bn_name TEXT NOT NULL DEFAULT '',
            lat TEXT NOT NULL DEFAULT '',
            lon TEXT NOT NULL DEFAULT '',
            url TEXT NOT NULL DEFAULT ''
        )`,
	`CREATE INDEX IF NOT EXISTS idx_bdgeo_districts_division ON bdgeo_districts(division_id, seq)`,
	`CREATE TABLE IF NOT EXISTS bdgeo_upazilas (
            seq INTEGER PRIMARY KEY,
            id TEXT NOT NULL,
            district_id TEXT NOT NULL,
            name TEXT NOT NULL,
            bn_name TEXT NOT NULL DEFAULT '',
            url TEXT NOT NULL DEFAULT ''
        )`,
	`CREATE INDEX IF NOT EXISTS idx_bdgeo_upazilas_district ON bdgeo_upazilas(district_id, seq)`,
	`CREATE TABLE IF NOT EXISTS bdgeo_unions (
            seq INTEGER PRIMARY KEY,
            id TEXT NOT NULL,
            upazilla_id TEXT NOT NULL,
            name TEXT NOT NULL,
            bn_name TEXT NOT NULL DEFAULT '',
            url TEXT NOT NULL DEFAULT ''
        )`,
	`CREATE INDEX IF NOT EXISTS idx_bdgeo_unions_upazila ON bdgeo_unions(upazilla_id, seq)`,
	`CREATE TABLE IF NOT EXISTS bdgeo_district_areas (
            seq INTEGER PRIMARY KEY,
            district_id TEXT NOT NULL,
            areas TEXT NOT NULL DEFAULT '[]'
        )`,
}

// EnsureSchema：创建参考数据表；已存在时不做任何修改
func EnsureSchema(db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
