package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database"
	"github.com/anoixa/bandpress/internal/backup"
	"github.com/anoixa/bandpress/storage"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// backupCmd 数据库备份命令
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup an application's database to a JSONL archive",
	Long: `Export every table of one application into a tar.gz archive of JSONL files
and upload it to the configured backup storage (local, minio or webdav).

Examples:
  # Backup the blog database
  bandpress backup --app blog

  # Keep only the five most recent catalog archives
  bandpress backup --app catalog --keep 5

  # List existing archives without creating a new one
  bandpress backup --app blog --list`,
	Run: func(cmd *cobra.Command, args []string) {
		keep, _ := cmd.Flags().GetInt("keep")
		list, _ := cmd.Flags().GetBool("list")

		if err := runBackup(keep, list); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().Int("keep", 0, "Delete older archives, keeping the N most recent (0 keeps all)")
	backupCmd.Flags().Bool("list", false, "List archives in backup storage and exit")
}

// newBackupService 根据配置连接数据库和备份存储
func newBackupService(cfg *config.Config) (*backup.Service, *gorm.DB, error) {
	if err := config.ValidateApp(cfg.App); err != nil {
		return nil, nil, err
	}

	store, err := storage.NewProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize backup storage: %w", err)
	}

	db, err := database.NewDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return backup.NewService(db, store, cfg.App), db, nil
}

// runBackup 执行备份
func runBackup(keep int, list bool) error {
	config.InitConfig()
	cfg := config.Get()

	svc, db, err := newBackupService(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	ctx := context.Background()
	if list {
		names, err := svc.List(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No backups found.")
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	log.Printf("[Backup] Exporting %s (%s)", cfg.App, cfg.DBType)
	name, manifest, err := svc.Backup(ctx)
	if err != nil {
		return err
	}

	pruned, err := svc.Prune(ctx, keep)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("       Backup Statistics")
	fmt.Println("========================================")
	fmt.Printf("Archive: %s\n", name)
	for _, table := range manifest.Tables {
		fmt.Printf("%-14s %8d\n", table, manifest.RecordCount[table])
	}
	if len(pruned) > 0 {
		fmt.Printf("Pruned:  %d old archive(s)\n", len(pruned))
	}
	fmt.Println("========================================")
	return nil
}
