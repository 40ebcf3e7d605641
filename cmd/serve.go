package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/bandpress/api/core"
	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/internal/app"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := config.ValidateApp(cfg.App); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	container := app.NewContainer(cfg)
	if err := container.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	log.Printf("[Server] %s initialized successfully", cfg.App)

	// 启动gin
	server, cleanup := core.StartServer(container)
	go func() {
		log.Printf("[Server] Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[Server] Server forced to shutdown: %v", err)
	}

	if cleanup != nil {
		cleanup()
	}

	// 关闭 DI 容器
	if err := container.Close(); err != nil {
		log.Printf("[Server] Error closing container: %v", err)
	}

	log.Println("[Server] Server exited successfully")
}
