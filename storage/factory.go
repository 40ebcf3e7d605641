package storage

import (
	"fmt"
	"log"

	"github.com/anoixa/bandpress/config"
)

// 存储类型
const (
	TypeLocal  = "local"
	TypeMinio  = "minio"
	TypeWebDAV = "webdav"
)

// NewProvider 按配置创建备份存储
func NewProvider(cfg *config.Config) (Provider, error) {
	storageType := cfg.BackupStorage
	if storageType == "" {
		storageType = TypeLocal
	}

	log.Printf("[Storage] Initializing backup storage, type: %s", storageType)

	switch storageType {
	case TypeLocal:
		return NewLocalStorage(cfg.BackupLocalPath)
	case TypeMinio:
		return NewMinioStorage(MinioConfig{
			Endpoint:        cfg.BackupMinioEndpoint,
			AccessKeyID:     cfg.BackupMinioAccessKey,
			SecretAccessKey: cfg.BackupMinioSecretKey,
			BucketName:      cfg.BackupMinioBucket,
			UseSSL:          cfg.BackupMinioUseSSL,
		})
	case TypeWebDAV:
		return NewWebDAVStorage(WebDAVConfig{
			URL:      cfg.BackupWebDAVURL,
			Username: cfg.BackupWebDAVUsername,
			Password: cfg.BackupWebDAVPassword,
			RootPath: cfg.BackupWebDAVRoot,
		})
	default:
		return nil, fmt.Errorf("unsupported backup storage type: %s", storageType)
	}
}
