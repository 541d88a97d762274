package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// Cond 简单查询条件，Op支持 = != > >= < <= like
type Cond struct {
	Field string
	Op    string
	Value any
}

func Eq(field string, value any) Cond {
	return Cond{Field: field, Op: "=", Value: value}
}

// Repository 单表的泛型仓储，SQL交给sqlbuilder拼，执行走sqlx
// 只覆盖常用的增删改查，复杂查询直接用db
type Repository[T any] struct {
	db    *sqlx.DB
	table string
	sb    *sqlbuilder.Struct
}

func NewRepository[T any](db *sqlx.DB, table string) *Repository[T] {
	return &Repository[T]{
		db:    db,
		table: table,
		sb:    sqlbuilder.NewStruct(new(T)).WithFieldMapper(sqlbuilder.SnakeCaseMapper),
	}
}

func (r *Repository[T]) Insert(ctx context.Context, v *T) error {
	query, args := r.sb.InsertInto(r.table, v).Build()
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Get 按单个字段取一行，不存在时返回ErrNotFound
func (r *Repository[T]) Get(ctx context.Context, field string, value any) (*T, error) {
	b := r.sb.SelectFrom(r.table)
	b.Where(b.Equal(field, value)).Limit(1)
	query, args := b.Build()
	var v T
	if err := r.db.GetContext(ctx, &v, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Select 按条件查询，limit为0表示不限制
func (r *Repository[T]) Select(ctx context.Context, limit int, conds ...Cond) ([]T, error) {
	return r.SelectOrder(ctx, "", limit, conds...)
}

// SelectOrder 带排序的查询，orderBy加-前缀表示倒序
func (r *Repository[T]) SelectOrder(ctx context.Context, orderBy string, limit int, conds ...Cond) ([]T, error) {
	b := r.sb.SelectFrom(r.table)
	for _, c := range conds {
		expr, err := buildCond(b, c)
		if err != nil {
			return nil, err
		}
		b.Where(expr)
	}
	if strings.HasPrefix(orderBy, "-") {
		b.OrderBy(strings.TrimPrefix(orderBy, "-")).Desc()
	} else if orderBy != "" {
		b.OrderBy(orderBy).Asc()
	}
	if limit > 0 {
		b.Limit(limit)
	}
	query, args := b.Build()
	var out []T
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Update 按单个字段定位并整行更新
func (r *Repository[T]) Update(ctx context.Context, v *T, field string, value any) error {
	b := r.sb.Update(r.table, v)
	b.Where(b.Equal(field, value))
	query, args := b.Build()
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository[T]) Delete(ctx context.Context, field string, value any) error {
	b := r.sb.DeleteFrom(r.table)
	b.Where(b.Equal(field, value))
	query, args := b.Build()
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func buildCond(b *sqlbuilder.SelectBuilder, c Cond) (string, error) {
	switch c.Op {
	case "=", "":
		return b.Equal(c.Field, c.Value), nil
	case "!=", "<>":
		return b.NotEqual(c.Field, c.Value), nil
	case ">":
		return b.GreaterThan(c.Field, c.Value), nil
	case ">=":
		return b.GreaterEqualThan(c.Field, c.Value), nil
	case "<":
		return b.LessThan(c.Field, c.Value), nil
	case "<=":
		return b.LessEqualThan(c.Field, c.Value), nil
	case "like":
		return b.Like(c.Field, c.Value), nil
	default:
		return "", fmt.Errorf("data: unsupported op %q", c.Op)
	}
}
