package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carmenjuyo/forecast-converter/internal/config"
	"github.com/carmenjuyo/forecast-converter/internal/exporter"
	"github.com/carmenjuyo/forecast-converter/internal/importer"
	"github.com/carmenjuyo/forecast-converter/internal/parser"
	"github.com/carmenjuyo/forecast-converter/internal/server"
	"github.com/carmenjuyo/forecast-converter/internal/store"
)

var (
	port       = flag.Int("port", 0, "HTTP port (config.toml wins unless port is unset there)")
	devMode    = flag.Bool("dev", false, "development mode")
	dataDir    = flag.String("dataDir", "", "data directory (overrides config)")
	configPath = flag.String("config", "", "path to config.toml (default: next to the executable)")
	output     = flag.String("o", "", "batch mode: output CSV path (default: export.filename)")
)

func main() {
	flag.Parse()

	// 加载配置
	var (
		cfg  *config.AppConfig
		info config.LoadConfigInfo
		err  error
	)
	if *configPath != "" {
		cfg, info, err = config.LoadConfigFrom(*configPath)
	} else {
		cfg, info, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	logger, err := newLogger(cfg.Server.DevMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		os.Exit(runBatch(cfg, logger, flag.Args()))
	}
	defer func() { _ = logger.Sync() }()
	runServer(cfg, logger)
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runBatch 批处理模式：抽取命令行给出的工作簿并写出 CSV
// 返回进程退出码；调用方随后 os.Exit，因此日志在这里刷新
func runBatch(cfg *config.AppConfig, logger *zap.Logger, paths []string) int {
	defer func() { _ = logger.Sync() }()

	opts := importer.Options{
		Extract: parser.NewExtractOptions(cfg.Extract),
		Logger:  logger,
	}

	if cfg.Data.AuditLog {
		if st, err := openAuditStore(cfg); err != nil {
			logger.Warn("audit log disabled", zap.Error(err))
		} else {
			defer st.Close()
			opts.Audit = st
		}
	}

	sources := make([]importer.Source, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			logger.Warn("skip input file", zap.String("file", p), zap.Error(err))
			continue
		}
		defer f.Close()
		sources = append(sources, importer.Source{Name: p, Reader: f})
	}

	table, report, err := importer.NewAggregator(opts).Aggregate(sources)
	if errors.Is(err, importer.ErrEmptyResult) {
		fmt.Println("No data extracted: none of the input files contains a recognized month sheet.")
		return 0
	}
	if err != nil {
		logger.Error("extraction failed", zap.Error(err))
		return 1
	}

	out := *output
	if out == "" {
		out = cfg.Export.Filename
	}
	data, err := exporter.FormatCSV(table)
	if err != nil {
		logger.Error("format csv failed", zap.Error(err))
		return 1
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		logger.Error("write csv failed", zap.String("path", out), zap.Error(err))
		return 1
	}

	for _, w := range report.Warnings {
		fmt.Println("warning:", w)
	}
	fmt.Printf("Data extracted successfully: %d rows, %d segments -> %s\n", len(table.Rows), len(report.Segments), out)
	return 0
}

func openAuditStore(cfg *config.AppConfig) (*store.Store, error) {
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, err
	}
	return store.New(filepath.Join(dir, "forecast-converter.db"))
}

// runServer 服务模式
func runServer(cfg *config.AppConfig, logger *zap.Logger) {
	fmt.Println("==========================================")
	fmt.Println("  forecast-converter - RN & REV extractor")
	fmt.Println("==========================================")

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("create server failed", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	go func() {
		fmt.Printf("listening on http://localhost:%d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	fmt.Println("\nPress Ctrl+C to stop...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nshutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown failed", zap.Error(err))
	}
}
