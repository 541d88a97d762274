package data

/**
  *  @author tryao
  *  @date 2022/09/08 15:40
**/

import (
	"errors"
	"sync"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound 查询目标不存在
var ErrNotFound = errors.New("data: record not found")

var once sync.Once

// Open 打开数据库连接并统一字段命名：Go侧驼峰，库表侧蛇形
func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	UseSnakeCase(db)
	return db, nil
}

func UseSnakeCase(db *sqlx.DB) {
	once.Do(func() {
		//全局有效
		sqlbuilder.DefaultFieldMapper = sqlbuilder.SnakeCaseMapper
	})
	db.MapperFunc(sqlbuilder.SnakeCaseMapper)
}
