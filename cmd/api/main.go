package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	apianalysis "creditagent/pkg/api/analysis"
	apiconfig "creditagent/pkg/api/config"
	"creditagent/pkg/api/customer"
	apireport "creditagent/pkg/api/report"
	"creditagent/pkg/config"
	"creditagent/pkg/core/agent"
	coreanalysis "creditagent/pkg/core/analysis"
	"creditagent/pkg/core/report"
	"creditagent/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.NewConfig()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initialize manager from config
	var agentCfg agent.Config
	if data, err := os.ReadFile(cfg.ModelsConfig); err == nil {
		if err := yaml.Unmarshal(data, &agentCfg); err != nil {
			logger.Fatalf("Failed to parse %s: %v", cfg.ModelsConfig, err)
		}
	} else {
		logger.Warnf("Model config %s not found, using provider defaults", cfg.ModelsConfig)
	}
	agentMgr := agent.NewManager(agentCfg)

	// Customer storage: Postgres-backed when DATABASE_URL is set, with the
	// file store as local fallback.
	var customerStore store.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		hybrid, err := store.NewHybridStore(pool, cfg.DataDir)
		if err != nil {
			logger.Fatalf("Failed to initialize storage: %v", err)
		}
		customerStore = hybrid
	} else {
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Fatalf("Failed to initialize file storage: %v", err)
		}
		customerStore = fs
	}

	analyzer := coreanalysis.NewAnalyzer(customerStore, agentMgr, logger)
	renderer, err := report.NewRenderer(cfg.ReportsDir, cfg.KoreanFontPath, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize report renderer: %v", err)
	}

	customerHandler := customer.NewHandler(customerStore, logger)
	configHandler := apiconfig.NewHandler(agentMgr)
	analysisHandler := apianalysis.NewHandler(analyzer)
	reportHandler := apireport.NewHandler(analyzer, renderer)

	r := mux.NewRouter()
	r.HandleFunc("/generate_customers", customerHandler.HandleGenerate).Methods("POST")
	r.HandleFunc("/customers", customerHandler.HandleList).Methods("GET")
	r.HandleFunc("/customer/{id}", customerHandler.HandleGet).Methods("GET")
	r.HandleFunc("/customer/name/{name}", customerHandler.HandleGetByName).Methods("GET")

	r.HandleFunc("/analyze", analysisHandler.HandleAnalyze).Methods("POST")
	r.HandleFunc("/analyze_trend", analysisHandler.HandleAnalyzeTrend).Methods("POST")
	r.HandleFunc("/predict", analysisHandler.HandlePredict).Methods("POST")
	r.HandleFunc("/recommend", analysisHandler.HandleRecommend).Methods("POST")
	r.HandleFunc("/assess", analysisHandler.HandleAssess).Methods("POST")

	r.HandleFunc("/generate_report", reportHandler.HandleCreditReport).Methods("GET")
	r.HandleFunc("/generate_timeseries_report", reportHandler.HandleTimeSeriesReport).Methods("GET")

	r.HandleFunc("/config", configHandler.HandleConfig).Methods("GET")
	r.HandleFunc("/config/switch", configHandler.HandleSwitch).Methods("POST")

	// Periodically drop reports older than the retention window.
	pruner := report.NewPruner(cfg.ReportsDir, cfg.ReportRetention, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.PruneSchedule, func() {
		if err := pruner.Prune(); err != nil {
			logger.Warnf("Report pruning failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Invalid prune schedule %q: %v", cfg.PruneSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	logger.Infof("Starting credit analysis server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
