package utils

import (
	"database/sql"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"bd-geo/internal/logger"
)

// OpenPostgres：打开 PostgreSQL 连接池；只读查询场景连接数偏小即可
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	maxOpen := 10
	maxIdle := 5
	if v := os.Getenv("PG_MAX_OPEN_CONNS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			maxOpen = n
		}
	}
	if v := os.Getenv("PG_MAX_IDLE_CONNS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			maxIdle = n
		}
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, nil
}

// OpenSQLiteRW：以读写模式打开 SQLite 文件，不存在时创建；仅供建表使用
func OpenSQLiteRW(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?mode=rwc&_pragma=busy_timeout(5000)"
	}
	logger.L().Debug("sqlite_open_rw", "path", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenSQLite：以只读模式打开 SQLite 文件
// 约束：path 为 ":memory:" 时不附加只读参数，供测试使用。
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
	}
	logger.L().Debug("sqlite_open", "path", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
