package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/anoixa/bandpress/database"
	"github.com/anoixa/bandpress/storage"
	"gorm.io/gorm"
)

// Service 备份服务：导出归档并保存到存储后端
type Service struct {
	db    *gorm.DB
	store storage.Provider
	app   string
	now   func() time.Time
}

// NewService 创建备份服务
func NewService(db *gorm.DB, store storage.Provider, app string) *Service {
	return &Service{db: db, store: store, app: app, now: time.Now}
}

// ArchiveName 归档文件名 <app>-<yyyymmdd-hhmmss>.tar.gz，按名称排序即按时间排序
func ArchiveName(app string, t time.Time) string {
	return fmt.Sprintf("%s-%s.tar.gz", app, t.UTC().Format("20060102-150405"))
}

func (s *Service) prefix() string {
	return s.app + "-"
}

// Backup 导出当前数据并上传
func (s *Service) Backup(ctx context.Context) (string, *Manifest, error) {
	var buf bytes.Buffer
	manifest, err := Export(ctx, s.db, s.app, &buf)
	if err != nil {
		return "", nil, err
	}

	name := ArchiveName(s.app, s.now())
	if err := s.store.SaveWithContext(ctx, name, &buf); err != nil {
		return "", nil, fmt.Errorf("failed to upload archive: %w", err)
	}
	log.Printf("[Backup] Saved %s to %s", name, s.store.Name())
	return name, manifest, nil
}

// List 本应用的全部归档，旧的在前
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx, s.prefix())
}

// Latest 最新的归档
func (s *Service) Latest(ctx context.Context) (string, error) {
	names, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no backups for %s", storage.ErrNotFound, s.app)
	}
	return names[len(names)-1], nil
}

// Prune 只保留最新的 keep 个归档，返回被删除的名称
func (s *Service) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) <= keep {
		return nil, nil
	}

	stale := names[:len(names)-keep]
	for _, name := range stale {
		if err := s.store.DeleteWithContext(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to delete %s: %w", name, err)
		}
		log.Printf("[Backup] Pruned %s", name)
	}
	return stale, nil
}

// Restore 从存储下载归档并写入数据库
func (s *Service) Restore(ctx context.Context, name string, opts database.CopyOptions) (*Manifest, []database.TableStats, error) {
	r, err := s.store.GetWithContext(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if c, ok := r.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	return Import(ctx, s.db, s.app, r, opts)
}
