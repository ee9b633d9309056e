// AI Sweater Designer backend: a multi-provider image generation service
// with a JSON API for the browser-based design tool.
package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhlf2008/AI-Sweater-Designer/core"
	"github.com/zhlf2008/AI-Sweater-Designer/core/validation"
	"github.com/zhlf2008/AI-Sweater-Designer/db"
	"github.com/zhlf2008/AI-Sweater-Designer/imagegen"
	"github.com/zhlf2008/AI-Sweater-Designer/logging"
	"github.com/zhlf2008/AI-Sweater-Designer/shutdown"
	"github.com/zhlf2008/AI-Sweater-Designer/styles"
	"github.com/zhlf2008/AI-Sweater-Designer/webui"
	"github.com/zhlf2008/AI-Sweater-Designer/webui/auth"
)

func main() {
	// Service subcommands (install/uninstall/start/stop) exit here on
	// Windows; elsewhere this is a no-op.
	if HandleServiceCommand(os.Args[1:]) {
		return
	}
	if running, err := RunAsService(); err != nil {
		fmt.Printf("Service error: %v\n", err)
		os.Exit(core.ExitCodeError)
	} else if running {
		return
	}

	os.Exit(run())
}

// run holds the real startup sequence so both plain execution and the
// Windows service wrapper share it.
func run() int {
	// Load .env if present. Missing is fine: everything can come from
	// real environment variables.
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Note: no .env file loaded: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	config, err := core.LoadConfig()
	if err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return core.ExitCodeError
	}

	logger, err := logging.NewLogger(isDevelopment, config.LogFilePath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer logger.Sync()

	suite := validation.NewValidationSuite(config).WithShowProgress(true)
	result := suite.Validate()
	if !result.Success {
		logger.Error("startup validation failed", zap.Error(result.GetFirstError()))
		return core.ExitCodeError
	}

	logger.Info("configuration loaded",
		zap.String("provider", string(config.Provider)),
		zap.Int("port", config.Port),
		zap.String("data_dir", config.DataDir),
		zap.Duration("request_timeout", config.RequestTimeout),
		zap.Bool("dev_mode", isDevelopment),
		zap.Int("configured_providers", len(config.ConfiguredProviders())),
	)

	catalog, err := styles.Load(config.StylesPath)
	if err != nil {
		logger.Error("failed to load styles catalog", zap.Error(err))
		return core.ExitCodeError
	}

	database, err := db.NewDatabase(config.DatabasePath)
	if err != nil {
		logger.Error("failed to open history database", zap.Error(err))
		return core.ExitCodeError
	}
	defer database.Close()
	repository := db.NewRepository(database)

	httpClient := config.GetHTTPClient()
	resolver := imagegen.NewCredentialResolver(config.GeminiAPIKey)
	generator, err := imagegen.NewGenerator(resolver, httpClient, logger.Named("imagegen"))
	if err != nil {
		logger.Error("failed to build generator", zap.Error(err))
		return core.ExitCodeError
	}
	verifier := imagegen.NewConnectionVerifier(httpClient)

	enhancer := func(ctx context.Context, s imagegen.Settings, prompt string) (string, error) {
		return imagegen.EnhancePrompt(ctx, resolver, s, httpClient, prompt)
	}

	authMw, err := auth.NewMiddleware(config.WebUIPassword, logger.Zap())
	if err != nil {
		logger.Error("failed to set up authentication", zap.Error(err))
		return core.ExitCodeError
	}

	api := webui.NewAPI(
		generator,
		verifier,
		enhancer,
		repository,
		catalog,
		config.ImageSettings,
		logger.Zap(),
	)

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Port = config.Port
	server := webui.NewServer(serverConfig, api, authMw, logger.Zap())

	manager := shutdown.NewManager(logger.Zap())
	manager.Register("http-server", 0, server.Shutdown)
	manager.Register("database", 10, func(context.Context) error {
		return database.Close()
	})
	manager.Register("logger", 20, func(context.Context) error {
		return logger.Sync()
	})
	manager.Start()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	exitCode := core.ExitCodeSuccess
	select {
	case <-manager.Context().Done():
		if sig := manager.Signal(); sig == syscall.SIGTERM {
			exitCode = core.ExitCodeSIGTERM
		} else if sig != nil {
			exitCode = core.ExitCodeSIGINT
		}
	case err := <-errChan:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			exitCode = core.ExitCodeError
		}
	}

	if err := manager.Shutdown(); err != nil {
		exitCode = core.ExitCodeError
	}
	logger.Info("goodbye")
	return exitCode
}
