package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ppconvert/internal/config"
	"ppconvert/internal/exporter"
	"ppconvert/internal/importer"
	"ppconvert/internal/masterdata"
	"ppconvert/internal/server"
	"ppconvert/internal/store"
)

var (
	configPath   = flag.String("config", "", "配置文件路径（默认可执行文件同目录 config.toml）")
	serve        = flag.Bool("serve", false, "启动 HTTP 服务")
	port         = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode      = flag.Bool("dev", false, "开发模式")
	dataDir      = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	debug        = flag.Bool("debug", false, "输出调试日志")
	endpoint     = flag.String("endpoint", "", "参照数据服务地址 (覆盖配置文件)")
	snapshot     = flag.String("snapshot", "", "主数据快照文件 (覆盖配置文件)")
	saveSnapshot = flag.String("save-snapshot", "", "从参照服务拉取主数据与历史并保存为快照后退出")
	inPath       = flag.String("in", "", "一次性转换：行数据 JSON 文件")
	fileName     = flag.String("file", "", "源 PDF 文件名（参照号取自文件名，默认取 -in 的文件名）")
	outPath      = flag.String("out", "", "导出 xlsx 路径（默认数据目录 exports/）")
	noWriteBack  = flag.Bool("no-writeback", false, "导出后不回写历史")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Error("ppconvert failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func run(logger *zap.Logger) error {
	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	// 加载配置
	cfg, info, err := config.LoadConfigFrom(path)
	if err != nil {
		logger.Warn("加载配置失败，使用默认配置", zap.String("path", path), zap.Error(err))
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
	if *endpoint != "" {
		cfg.Reference.Endpoint = *endpoint
	}
	if *snapshot != "" {
		cfg.Reference.SnapshotPath = *snapshot
	}

	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	logger.Info("data directory ready", zap.String("dir", dir))

	st, err := store.New(filepath.Join(dir, "ppconvert.db"))
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Debug("store opened", zap.String("path", st.Path()))

	client := masterdata.NewClient(cfg.Reference.Endpoint,
		masterdata.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Reference.TimeoutSeconds) * time.Second}),
		masterdata.WithLogger(logger.Named("masterdata")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *saveSnapshot != "" {
		return writeSnapshot(ctx, client, *saveSnapshot, logger)
	}

	coord := importer.NewCoordinator(buildOptions(cfg, client, st, logger))

	if *serve {
		srv := server.NewServer(cfg, server.Deps{
			Coordinator: coord,
			Logs:        st,
			ExportDir:   filepath.Join(dir, "exports"),
			Logger:      logger.Named("http"),
		})
		if _, err := coord.ReloadMaster(ctx); err != nil {
			logger.Warn("主数据预加载失败，首次请求时重试", zap.Error(err))
		}
		return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
	}

	if *inPath == "" {
		flag.Usage()
		return fmt.Errorf("需要 -serve 或 -in")
	}
	return convertOnce(ctx, coord, dir, logger)
}

// buildOptions 按配置组装主数据来源与历史后端
func buildOptions(cfg *config.AppConfig, client *masterdata.Client, st *store.Store, logger *zap.Logger) importer.Options {
	opts := importer.Options{
		Master:     client,
		MasterName: client.Endpoint(),
		Journal:    st,
		Exporter: exporter.New(exporter.Options{
			SheetName:    cfg.Export.SheetName,
			FlagColor:    cfg.Export.FlagColor,
			TemplatePath: cfg.Export.TemplatePath,
		}),
		Logger:    logger.Named("session"),
		CreatedBy: cfg.History.CreatedBy,
	}

	snap := masterdata.Snapshot{Path: cfg.Reference.SnapshotPath}
	if cfg.Reference.SnapshotPath != "" {
		opts.Master = snap
		opts.MasterName = cfg.Reference.SnapshotPath
	}

	switch cfg.History.Backend {
	case config.HistoryBackendAPI:
		opts.History = client
	case config.HistoryBackendSQLite:
		opts.History = st
	}
	return opts
}

func writeSnapshot(ctx context.Context, client *masterdata.Client, path string, logger *zap.Logger) error {
	m, err := client.LoadMaster(ctx)
	if err != nil {
		return err
	}
	history, err := client.LoadHistory(ctx)
	if err != nil {
		logger.Warn("历史读取失败，快照不含历史", zap.Error(err))
	}
	if err := masterdata.SaveSnapshot(path, m, history); err != nil {
		return err
	}
	logger.Info("snapshot saved", zap.String("path", path), zap.Int("history", len(history)))
	return nil
}

func convertOnce(ctx context.Context, coord *importer.Coordinator, dir string, logger *zap.Logger) error {
	rows, err := readRows(*inPath)
	if err != nil {
		return err
	}

	name := *fileName
	if name == "" {
		name = filepath.Base(*inPath)
	}
	out := *outPath
	if out == "" {
		out = filepath.Join(dir, "exports", exporter.OutputName(name))
	}

	for ev := range coord.Run(ctx, importer.SessionOptions{
		FileName:   name,
		Rows:       rows,
		OutputPath: out,
		WriteBack:  !*noWriteBack,
	}) {
		switch ev.Type {
		case importer.EventError:
			return ev.Err
		case importer.EventWarning:
			logger.Warn(ev.Message)
		case importer.EventDone:
			report := ev.Data.(*importer.Report)
			fmt.Printf("%s: %d 行 → %d 条记录（待复核 %d 格）→ %s\n",
				report.FileName, report.TotalRows, report.RecordCount, report.FlaggedCells, report.OutputPath)
		default:
			logger.Debug(ev.Message, zap.String("event", ev.Type))
		}
	}
	return ctx.Err()
}
