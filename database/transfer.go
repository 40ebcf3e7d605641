package database

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// 冲突处理策略
const (
	ConflictSkip      = "skip"
	ConflictOverwrite = "overwrite"
	ConflictError     = "error"
)

// CopyOptions 表复制选项
type CopyOptions struct {
	BatchSize  int
	OnConflict string
	DryRun     bool // 只统计源表，不连接目标库
}

// Normalize 填充默认值并校验冲突策略
func (o *CopyOptions) Normalize() error {
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	switch o.OnConflict {
	case "":
		o.OnConflict = ConflictSkip
	case ConflictSkip, ConflictOverwrite, ConflictError:
	default:
		return fmt.Errorf("invalid on-conflict strategy: %s (must be skip, overwrite, or error)", o.OnConflict)
	}
	return nil
}

// TableStats 单表复制统计
type TableStats struct {
	Table   string
	Read    int64
	Written int64
	Skipped int64
}

// CopyApp 按外键顺序把一个应用的全部表从 src 复制到 dst
func CopyApp(ctx context.Context, src, dst *gorm.DB, app string, opts CopyOptions) ([]TableStats, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	toCopy, err := ModelsFor(app)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		if dst == nil {
			return nil, fmt.Errorf("target database is required")
		}
		if err := Migrate(dst, app); err != nil {
			return nil, fmt.Errorf("failed to migrate target schema: %w", err)
		}
	}

	stats := make([]TableStats, 0, len(toCopy))
	for _, model := range toCopy {
		st, err := copyTable(ctx, src, dst, model, opts)
		stats = append(stats, st)
		if err != nil {
			return stats, fmt.Errorf("copy %s: %w", st.Table, err)
		}
		log.Printf("[Migrate] %s: read %d, written %d, skipped %d", st.Table, st.Read, st.Written, st.Skipped)
	}
	return stats, nil
}

// TableSchema 解析模型的表结构
func TableSchema(db *gorm.DB, model interface{}) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, err
	}
	return stmt.Schema, nil
}

func copyTable(ctx context.Context, src, dst *gorm.DB, model interface{}, opts CopyOptions) (TableStats, error) {
	sch, err := TableSchema(src, model)
	if err != nil {
		return TableStats{}, err
	}
	st := TableStats{Table: sch.Table}

	// 按主键分页，保证多次运行顺序一致
	order := strings.Join(sch.PrimaryFieldDBNames, ", ")
	sliceType := reflect.SliceOf(reflect.TypeOf(model))

	for offset := 0; ; offset += opts.BatchSize {
		batch := reflect.New(sliceType)
		err := src.WithContext(ctx).
			Model(model).
			Order(order).
			Limit(opts.BatchSize).
			Offset(offset).
			Find(batch.Interface()).Error
		if err != nil {
			return st, err
		}

		n := int64(batch.Elem().Len())
		if n == 0 {
			break
		}
		st.Read += n

		if !opts.DryRun {
			written, err := InsertBatch(ctx, dst, batch.Interface(), opts.OnConflict)
			if err != nil {
				return st, err
			}
			st.Written += written
			st.Skipped += n - written
		}

		if n < int64(opts.BatchSize) {
			break
		}
	}

	if !opts.DryRun && st.Written > 0 {
		if err := ResetSequence(ctx, dst, model); err != nil {
			return st, err
		}
	}
	return st, nil
}

// InsertBatch 按冲突策略写入一批记录（指向模型切片的指针），返回实际写入条数
func InsertBatch(ctx context.Context, dst *gorm.DB, batch interface{}, onConflict string) (int64, error) {
	n := int64(reflect.Indirect(reflect.ValueOf(batch)).Len())
	if n == 0 {
		return 0, nil
	}

	tx := dst.WithContext(ctx).Omit(clause.Associations)
	switch onConflict {
	case ConflictSkip:
		tx = tx.Clauses(clause.OnConflict{DoNothing: true})
	case ConflictOverwrite:
		tx = tx.Clauses(clause.OnConflict{UpdateAll: true})
	}

	res := tx.Create(batch)
	if res.Error != nil {
		return 0, res.Error
	}
	if onConflict == ConflictSkip {
		return res.RowsAffected, nil
	}
	// MySQL 的 upsert 对更新行计数为 2，这里不依赖 RowsAffected
	return n, nil
}

// ResetSequence 显式写入自增主键后，PostgreSQL 需要把序列推进到最大值之后
func ResetSequence(ctx context.Context, dst *gorm.DB, model interface{}) error {
	if dst.Dialector.Name() != "postgres" {
		return nil
	}
	sch, err := TableSchema(dst, model)
	if err != nil {
		return err
	}
	field := sch.PrioritizedPrimaryField
	if field == nil || !field.AutoIncrement {
		return nil
	}

	sql := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 0) + 1, false)",
		sch.Table, field.DBName, field.DBName, sch.Table,
	)
	return dst.WithContext(ctx).Exec(sql).Error
}
