package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database"
	"github.com/spf13/cobra"
)

// restoreCmd 数据库恢复命令
var restoreCmd = &cobra.Command{
	Use:   "restore [archive]",
	Short: "Restore an application's database from a backup archive",
	Long: `Download a backup archive from the configured backup storage and write its rows
into the application's database. The schema is created first; rows whose primary key
already exists are handled according to --on-conflict.

Examples:
  # Restore the most recent blog archive
  bandpress restore --app blog --latest

  # Restore a specific archive, replacing existing rows
  bandpress restore --app catalog catalog-20261001-120000.tar.gz --on-conflict=overwrite`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		latest, _ := cmd.Flags().GetBool("latest")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")

		var name string
		if len(args) == 1 {
			name = args[0]
		}
		opts := database.CopyOptions{BatchSize: batchSize, OnConflict: onConflict}
		if err := runRestore(name, latest, opts); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().Bool("latest", false, "Restore the most recent archive")
	restoreCmd.Flags().Int("batch-size", 100, "Rows per insert batch")
	restoreCmd.Flags().String("on-conflict", database.ConflictSkip, "Conflict resolution strategy: skip (default), overwrite, error")
}

// runRestore 执行恢复
func runRestore(name string, latest bool, opts database.CopyOptions) error {
	config.InitConfig()
	cfg := config.Get()

	if name == "" && !latest {
		return errors.New("specify an archive name or --latest")
	}
	if err := opts.Normalize(); err != nil {
		return err
	}

	svc, db, err := newBackupService(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	ctx := context.Background()
	if latest {
		if name, err = svc.Latest(ctx); err != nil {
			return err
		}
	}

	log.Printf("[Restore] Restoring %s into %s (%s)", name, cfg.App, cfg.DBType)
	manifest, stats, err := svc.Restore(ctx, name, opts)
	printMigrateStats(stats, false)
	if err != nil {
		return err
	}

	log.Printf("[Restore] Restore of archive taken at %s completed successfully!", manifest.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}
