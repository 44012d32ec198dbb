// Command voicetypr-remoted runs the model-sharing daemon: it serves the
// configured model to other machines on the local network and keeps the
// saved-connection registry available over its lifetime.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/voicetypr/remote/client"
	"github.com/voicetypr/remote/config"
	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/remote"
	"github.com/voicetypr/remote/settings"
	"github.com/voicetypr/remote/sharing"
	"github.com/voicetypr/remote/store"
	"github.com/voicetypr/remote/transcription"
	"github.com/voicetypr/remote/transcription/cloud"
	"github.com/voicetypr/remote/transcription/parakeet"
	"github.com/voicetypr/remote/transcription/whisper"
	"github.com/voicetypr/remote/version"
)

const serviceName = "voicetypr-remoted"

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		logger.NewDefault(serviceName).Fatal("failed to load configuration", logger.ErrorFields("load_config", err))
	}

	log := logger.New(&cfg.Logging, serviceName)
	log.Info("starting", logger.Fields("version", version.String()))

	if err := run(cfg, log); err != nil {
		log.Fatal("daemon failed", logger.ErrorFields("run", err))
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	settingsMgr, err := settings.NewManager(st, log)
	if err != nil {
		return err
	}

	registry := buildRegistry(cfg, log)
	svc := remote.NewService(
		sharing.NewManager(registry, log),
		settingsMgr,
		client.New(log),
		log,
	)
	svc.SetSharedModel(remote.SharedModel{
		Path:   cfg.Model.Path,
		Name:   cfg.Model.Name,
		Engine: cfg.Model.Engine,
	})

	// The config file can force sharing on; otherwise the persisted user
	// setting decides.
	if cfg.Server.Enabled || settingsMgr.GetServerConfig().Enabled {
		if cfg.Server.Enabled {
			sc := settingsMgr.GetServerConfig()
			sc.Port = cfg.Server.Port
			sc.Password = cfg.Server.Password
			if err := settingsMgr.SetServerConfig(sc); err != nil {
				return err
			}
		}
		if err := svc.StartSharing(); err != nil {
			return err
		}
		if ips, err := svc.LocalIPs(); err == nil {
			log.Info("sharing started", logger.Fields(
				logger.FieldPort, svc.GetSharingStatus().Port,
				"addresses", ips,
			))
		}
	} else {
		log.Info("sharing disabled, serving connection registry only")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", logger.Fields("signal", sig.String()))

	return svc.StopSharing()
}

// buildRegistry registers every configured transcription engine.
func buildRegistry(cfg *config.Config, log *logger.Logger) *transcription.Registry {
	registry := transcription.NewRegistry()

	mustRegister := func(p transcription.Provider) {
		if err := registry.Register(p); err != nil {
			log.Fatal("provider registration failed", logger.ErrorFields("register", err))
		}
	}

	mustRegister(whisper.NewProvider(whisper.Config{
		Binary:    cfg.Providers.Whisper.Binary,
		ModelPath: cfg.Model.Path,
	}))
	mustRegister(parakeet.NewProvider(parakeet.Config{
		URL: cfg.Providers.Parakeet.SidecarURL,
	}))
	if cfg.Providers.Cloud.APIKey != "" {
		mustRegister(cloud.NewProvider(cloud.Config{
			URL:    cfg.Providers.Cloud.Endpoint,
			APIKey: cfg.Providers.Cloud.APIKey,
		}))
	}
	return registry
}
