package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adactor "github.com/berfenger/descview/internal/adapter/actor"
	"github.com/berfenger/descview/internal/adapter/schedule"
	"github.com/berfenger/descview/internal/config"
	"github.com/berfenger/descview/internal/core/actor"
	"github.com/berfenger/descview/internal/core/port"
	"github.com/berfenger/descview/internal/server"
	"github.com/berfenger/descview/internal/ticket"
	"github.com/berfenger/descview/internal/upstream"
	"github.com/berfenger/descview/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	logger.Info("starting descview", zap.String("version", versioninfo.Short()))

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	// descriptor source
	source, err := upstream.NewDeviceSource(cfg.Upstream.BaseURL, cfg.Upstream.FixturesFile, cfg.Upstream.Timeout(), logger)
	if err != nil {
		logger.Fatal("upstream source", zap.Error(err))
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, upstreamActorProvider(cfg, source, logger), mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		logger.Fatal("spawn master", zap.Error(err))
	}

	// periodic catalog refresh
	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()
	sched := quartz.NewStdScheduler()
	if interval := cfg.Catalog.RefreshInterval(); interval > 0 {
		sched.Start(schedCtx)
		if err := schedule.ScheduleCatalogRefresh(sched, quartz.NewSimpleTrigger(interval), ctx, pid, logger); err != nil {
			logger.Fatal("schedule catalog refresh", zap.Error(err))
		}
	}

	// tickets
	db, err := ticket.Open(cfg.Tickets.DBPath)
	if err != nil {
		logger.Fatal("ticket database", zap.Error(err))
	}
	defer db.Close()
	tickets := ticket.NewService(ticket.NewSQLiteRepository(db), adactor.NewEventStreamNotifier(as.EventStream), logger)

	server := server.NewServer(*cfg, ctx, pid, tickets, logger)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	if sched.IsStarted() {
		sched.Stop()
	}
	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => DESCVIEW_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("DESCVIEW_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("descview")
	// upstream.base_url => DESCVIEW_UPSTREAM_BASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check bounds
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func upstreamActorProvider(cfg *config.Config, source port.DeviceSource, logger *zap.Logger) actor.UpstreamActorProvider {
	return func() *adactor.UpstreamActor {
		return adactor.NewUpstreamActor(source, cfg.Compare.FetchTimeout(), logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	if !cfg.MQTT.Enable {
		return nil
	}
	return func() *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("http_log", false)
	viper.SetDefault("upstream.base_url", "")
	viper.SetDefault("upstream.fixtures_file", "")
	viper.SetDefault("upstream.timeout_millis", 5000)
	viper.SetDefault("compare.fetch_timeout_millis", 5000)
	viper.SetDefault("compare.session_idle_minutes", 30)
	viper.SetDefault("catalog.refresh_interval_seconds", 0)
	viper.SetDefault("units.precision", 2)
	viper.SetDefault("tickets.db_path", "data/tickets.db")
	viper.SetDefault("mqtt.enable", false)
	viper.SetDefault("mqtt.host", "localhost")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.base_topic", "descview")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
