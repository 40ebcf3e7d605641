package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy an application's data from SQLite into a server database",
	Long: `Copy every table of one application from a SQLite file into PostgreSQL or MySQL.

The target connection comes from the DB_HOST, DB_PORT, DB_USERNAME, DB_PASSWORD and DB_NAME
settings. The target schema is created first, then tables are copied in foreign-key order.

Examples:
  # Copy the blog database into PostgreSQL
  bandpress migrate --app blog --from ./data/blog.db --to-type postgres

  # Replace rows that already exist in the target
  bandpress migrate --app catalog --from ./data/catalog.db --to-type mysql --on-conflict=overwrite

  # Only count source rows
  bandpress migrate --app catalog --from ./data/catalog.db --to-type mysql --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		from, _ := cmd.Flags().GetString("from")
		toType, _ := cmd.Flags().GetString("to-type")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		opts := database.CopyOptions{BatchSize: batchSize, OnConflict: onConflict, DryRun: dryRun}
		if err := runMigration(from, toType, opts); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("from", "", "Source SQLite file (default: the app's SQLite file)")
	migrateCmd.Flags().String("to-type", "", "Target database type (postgres, mysql)")
	migrateCmd.Flags().Int("batch-size", 100, "Rows per insert batch")
	migrateCmd.Flags().String("on-conflict", database.ConflictSkip, "Conflict resolution strategy: skip (default), overwrite, error")
	migrateCmd.Flags().Bool("dry-run", false, "Count source rows without writing")
}

// runMigration 执行数据库迁移
func runMigration(from, toType string, opts database.CopyOptions) error {
	config.InitConfig()
	cfg := *config.Get()

	if err := config.ValidateApp(cfg.App); err != nil {
		return err
	}
	if from == "" {
		from = cfg.SQLitePath()
	}
	switch toType {
	case "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("--to-type must be postgres or mysql, got %q", toType)
	}

	log.Printf("[Migrate] Copying %s from %s to %s", cfg.App, from, toType)

	source, err := database.OpenSQLite(from)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer closeDB(source)

	var target *gorm.DB
	if !opts.DryRun {
		cfg.DBType = toType
		target, err = database.NewDB(&cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to target database: %w", err)
		}
		defer closeDB(target)
	}

	stats, err := database.CopyApp(context.Background(), source, target, cfg.App, opts)
	printMigrateStats(stats, opts.DryRun)
	if err != nil {
		return err
	}

	log.Println("[Migrate] Migration completed successfully!")
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// printMigrateStats 打印迁移统计
func printMigrateStats(stats []database.TableStats, dryRun bool) {
	fmt.Println()
	fmt.Println("========================================")
	if dryRun {
		fmt.Println("       Migration Statistics (dry run)")
	} else {
		fmt.Println("       Migration Statistics")
	}
	fmt.Println("========================================")
	fmt.Printf("%-14s %8s %8s %8s\n", "table", "read", "written", "skipped")
	for _, st := range stats {
		fmt.Printf("%-14s %8d %8d %8d\n", st.Table, st.Read, st.Written, st.Skipped)
	}
	fmt.Println("========================================")
}
