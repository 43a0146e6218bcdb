package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobhub/internal/api"
	"jobhub/internal/audience"
	"jobhub/internal/classifier"
	"jobhub/internal/company"
	"jobhub/internal/fetcher"
	"jobhub/internal/normalizer"
	"jobhub/internal/notifier"
	"jobhub/internal/recommend"
	"jobhub/internal/retention"
	"jobhub/internal/scheduler"
	"jobhub/internal/storage"
	"jobhub/internal/translation"
)

// AppConfig 应用配置。
type AppConfig struct {
	Fetcher     fetcher.Config       `yaml:"fetcher"`
	Translation translation.Config   `yaml:"translation"`
	Scheduler   scheduler.Config     `yaml:"scheduler"`
	Retention   retention.Config     `yaml:"retention"`
	Audience    audience.Config      `yaml:"audience"`
	Email       notifier.EmailConfig `yaml:"email"`
	Server      ServerConfig         `yaml:"server"`
	Database    DatabaseConfig       `yaml:"database"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// schedulerRunner 抽象调度器，便于测试替换。
type schedulerRunner interface {
	Start(ctx context.Context) error
	RunOnce(ctx context.Context) (int, error)
}

// httpServer 抽象 HTTP 服务器。
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// appDeps 汇总按配置装配出的核心组件。
type appDeps struct {
	sched   schedulerRunner
	cleaner *retention.Cleaner
	handler http.Handler
}

func main() {
	once := flag.Bool("once", false, "run a single fetch cycle and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Printf("load config error: %v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		created, err := runOnceManual(ctx, cfg, buildDeps)
		if err != nil {
			log.Printf("manual run error: %v", err)
			return
		}
		log.Printf("manual run created %d jobs", created)
		return
	}

	deps, cleanup, err := buildDeps(cfg)
	if err != nil {
		log.Printf("init error: %v", err)
		return
	}
	defer cleanup()

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: deps.handler}

	if deps.cleaner != nil {
		go func() {
			if err := deps.cleaner.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("retention stopped: %v", err)
			}
		}()
	}

	log.Printf("listening on %s", addr)
	if err := runServer(ctx, srv, deps.sched, 5*time.Second); err != nil {
		log.Printf("server error: %v", err)
	}
}

// runServer 同时运行调度器与 HTTP 服务器，上下文取消时优雅关闭。
func runServer(ctx context.Context, srv httpServer, sched schedulerRunner, shutdownTimeout time.Duration) error {
	go func() {
		if sched == nil {
			return
		}
		if err := sched.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("scheduler stopped: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runOnceManual 装配依赖并执行一次抓取流水线，用于命令行手动刷新。
func runOnceManual(ctx context.Context, cfg AppConfig, build func(AppConfig) (appDeps, func(), error)) (int, error) {
	deps, cleanup, err := build(cfg)
	if err != nil {
		return 0, fmt.Errorf("build dependencies: %w", err)
	}
	defer cleanup()

	return deps.sched.RunOnce(ctx)
}

// buildDeps 按配置装配存储、流水线与 HTTP 处理器。
func buildDeps(cfg AppConfig) (appDeps, func(), error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = "jobs.db"
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		return appDeps{}, nil, fmt.Errorf("init store: %w", err)
	}

	client := &http.Client{Timeout: 15 * time.Second}

	cls := classifier.New()
	norm := normalizer.New(cls, log.Default())
	resolver := company.NewResolver(cls)
	gateway := translation.NewGateway(cfg.Translation, client, log.Default())

	fetch := fetcher.NewRSSFetcher(cfg.Fetcher, client)
	notif := buildNotifier(store, cfg.Email)

	schedCfg := cfg.Scheduler
	if schedCfg.Interval == "" {
		schedCfg.Interval = cfg.Fetcher.Interval
	}
	sched := scheduler.NewScheduler(fetch, store, norm, resolver, gateway, notif, schedCfg)

	recSvc := recommend.NewService(store, store, log.Default())
	cleaner := retention.NewCleaner(store, cfg.Retention, log.Default())
	audSvc := audience.NewService(store, cfg.Audience)

	handler := api.NewHandler(store, sched, recSvc, cleaner, audSvc)

	cleanup := func() {
		_ = store.Close()
	}
	return appDeps{sched: sched, cleaner: cleaner, handler: handler}, cleanup, nil
}

func loadConfig() (AppConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}

	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, err
		}
	} else if !os.IsNotExist(err) {
		return AppConfig{}, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides 让敏感配置走环境变量，避免写进 yaml。
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("TRANSLATE_PREFERRED_PROVIDER"); v != "" {
		cfg.Translation.PreferredProvider = v
	}
	if v := os.Getenv("AI_TRANSLATE_API_KEY"); v != "" {
		cfg.Translation.AI.APIKey = v
	}
	if v := os.Getenv("AI_TRANSLATE_API_BASE"); v != "" {
		cfg.Translation.AI.APIBase = v
	}
	if v := os.Getenv("AI_TRANSLATE_MODEL"); v != "" {
		cfg.Translation.AI.Model = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

// buildNotifier 拼装通知链：受众通知优先，缺少 SMTP 配置时退回日志。
func buildNotifier(store *storage.Store, cfg notifier.EmailConfig) scheduler.Notifier {
	fallback := notifier.NewLogNotifier(log.Default())
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		log.Printf("email notifier disabled: missing host/port/from")
		return fallback
	}
	return notifier.NewAudienceNotifier(store, cfg, nil, fallback)
}
