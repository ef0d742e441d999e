// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"accelerator-portal/internal/common/auth"
	awsclient "accelerator-portal/internal/common/aws"
	"accelerator-portal/internal/common/camunda"
	"accelerator-portal/internal/common/config"
	"accelerator-portal/internal/common/database"
	"accelerator-portal/internal/common/lock"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/notify"
	"accelerator-portal/internal/repository/cache"
	"accelerator-portal/internal/repository/postgres"
	"accelerator-portal/internal/reviewindex"
	"accelerator-portal/internal/scorer"
	"accelerator-portal/internal/service/orchestrator"

	// Signup (2)
	a1 "accelerator-portal/internal/workers/signup/analyze-phase1-application"
	ra "accelerator-portal/internal/workers/signup/register-applicant"

	// Cohort & webinar (3)
	sc "accelerator-portal/internal/workers/cohort/save-cohort"
	cw "accelerator-portal/internal/workers/webinar/create-webinar"
	rwc "accelerator-portal/internal/workers/webinar/redeem-webinar-code"

	// In-depth application (3)
	spd "accelerator-portal/internal/workers/application/save-phase3-draft"
	spa "accelerator-portal/internal/workers/application/score-phase3-answer"
	sp3 "accelerator-portal/internal/workers/application/submit-phase3-application"

	// Admin (5)
	uss "accelerator-portal/internal/workers/admin/update-system-settings"
	fpt "accelerator-portal/internal/workers/review/force-phase-transition"
	rp3 "accelerator-portal/internal/workers/review/review-phase3-application"
	sio "accelerator-portal/internal/workers/review/set-interview-outcome"
	uar "accelerator-portal/internal/workers/review/update-applicant-review"

	// Communication (1)
	sn "accelerator-portal/internal/workers/communication/send-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebeClient, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := postgres.Migrate(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected and migrated")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if err := esClient.EnsureIndex(ctx, cfg.Lifecycle.ReviewIndex, reviewindex.Mapping); err != nil {
		zapLog.Fatal("review index setup failed", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- External services ---
	settings := cache.NewSettings(postgres.NewSettingsRepository(pg.DB), redis.Client,
		config.GetDuration(cfg.Lifecycle.SettingsCacheTTL), log)
	deps := orchestrator.Dependencies{
		Applicants:   postgres.NewApplicantRepository(pg.DB, log),
		Applications: postgres.NewApplicationRepository(pg.DB),
		Cohorts:      postgres.NewCohortRepository(pg.DB),
		Settings:     settings,
		Locker:       lock.NewRedisLocker(redis.Client, config.GetDuration(cfg.Lifecycle.CohortLockTTL)),
		Reviews:      reviewindex.NewIndexer(esClient.Client, cfg.Lifecycle.ReviewIndex),
		Logger:       log,
		Obs:          obs,
	}

	if kc := cfg.Auth.Keycloak; kc.URL != "" {
		deps.Identity = auth.NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret)
	} else {
		zapLog.Warn("keycloak not configured, applicants get local ids")
	}

	if sconf := cfg.APIs.Scorer; sconf.BaseURL != "" {
		deps.Scorer = scorer.NewClient(sconf.BaseURL, sconf.APIKey, config.GetDuration(sconf.Timeout))
	} else {
		zapLog.Warn("scorer not configured, phase 3 answers stay unscored")
	}

	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Integrations.AWS.Region)
	if err != nil {
		zapLog.Fatal("load AWS config failed", zap.Error(err))
	}
	fromEmail := cfg.Notifications.Email.FromEmail
	if fromEmail == "" {
		fromEmail = cfg.Integrations.AWS.SES.FromEmail
	}
	deps.Notifier = notify.New(notify.Config{
		EmailEnabled: cfg.Notifications.Email.Enabled && cfg.Integrations.AWS.SES.Enabled,
		FromEmail:    fromEmail,
		SMSEnabled:   cfg.Notifications.SMS.Enabled && cfg.Integrations.AWS.SNS.Enabled,
		SMSSenderID:  cfg.Integrations.AWS.SNS.DefaultSMSSenderID,
		PortalURL:    cfg.Notifications.PortalURL,
	}, awsclient.NewSESClient(awsCfg), awsclient.NewSNSClient(awsCfg), log)

	svc := orchestrator.New(deps, orchestrator.Options{WebinarCodeAttempts: cfg.Lifecycle.WebinarCodeAttempts})
	zapLog.Info("Lifecycle orchestrator initialized")

	// --- Register workers ---
	var workers []worker.JobWorker
	start := func(taskType string, handler worker.JobHandler) {
		if jw := camunda.StartWorker(zeebeClient, taskType, cfg.Workers[taskType], handler, zapLog); jw != nil {
			workers = append(workers, jw)
		}
	}

	start(ra.TaskType, ra.NewHandler(ra.LoadConfig(cfg.Workers[ra.TaskType]), svc, log, obs).Handle)
	start(a1.TaskType, a1.NewHandler(a1.LoadConfig(cfg.Workers[a1.TaskType]), svc, log, obs).Handle)

	start(sc.TaskType, sc.NewHandler(sc.LoadConfig(cfg.Workers[sc.TaskType]), svc, log, obs).Handle)
	start(cw.TaskType, cw.NewHandler(cw.LoadConfig(cfg.Workers[cw.TaskType]), svc, log, obs).Handle)
	start(rwc.TaskType, rwc.NewHandler(rwc.LoadConfig(cfg.Workers[rwc.TaskType]), svc, log, obs).Handle)

	start(spd.TaskType, spd.NewHandler(spd.LoadConfig(cfg.Workers[spd.TaskType]), svc, log, obs).Handle)
	start(sp3.TaskType, sp3.NewHandler(sp3.LoadConfig(cfg.Workers[sp3.TaskType]), svc, log, obs).Handle)
	start(spa.TaskType, spa.NewHandler(spa.LoadConfig(cfg.Workers[spa.TaskType]), svc, log, obs).Handle)

	start(rp3.TaskType, rp3.NewHandler(rp3.LoadConfig(cfg.Workers[rp3.TaskType]), svc, log, obs).Handle)
	start(sio.TaskType, sio.NewHandler(sio.LoadConfig(cfg.Workers[sio.TaskType]), svc, log, obs).Handle)
	start(fpt.TaskType, fpt.NewHandler(fpt.LoadConfig(cfg.Workers[fpt.TaskType]), svc, log, obs).Handle)
	start(uar.TaskType, uar.NewHandler(uar.LoadConfig(cfg.Workers[uar.TaskType]), svc, log, obs).Handle)
	start(uss.TaskType, uss.NewHandler(uss.LoadConfig(cfg.Workers[uss.TaskType]), svc, log, obs).Handle)

	start(sn.TaskType, sn.NewHandler(sn.LoadConfig(cfg.Workers[sn.TaskType]), svc, log, obs).Handle)

	zapLog.Info("Workers registered", zap.Int("active", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pg.Ping(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "postgres unavailable")
			return
		}
		if err := redis.Ping(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range workers {
		jw.Close()
	}
	for _, jw := range workers {
		jw.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
