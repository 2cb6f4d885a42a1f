package main

import (
	"context"
	"log/slog"
	"syscall"

	evbus "github.com/vardius/message-bus"

	"github.com/adralidus/lgl-portal/internal"
	"github.com/adralidus/lgl-portal/internal/adapters"
	"github.com/adralidus/lgl-portal/internal/app/api/core"
	handlersV0 "github.com/adralidus/lgl-portal/internal/app/api/v0/handlers"
	"github.com/adralidus/lgl-portal/internal/app/audit"
	"github.com/adralidus/lgl-portal/internal/app/auth"
	"github.com/adralidus/lgl-portal/internal/app/notifications"
	"github.com/adralidus/lgl-portal/internal/app/sessions"
	"github.com/adralidus/lgl-portal/internal/app/users"
	"github.com/adralidus/lgl-portal/internal/config"
	"github.com/adralidus/lgl-portal/internal/domain"
)

func main() {
	ctx := internal.SignalAwareContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.GetConfig()
	internal.AssertNoError(err)

	internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogJson)

	slog.Info("starting lgl-portal", "version", internal.Version)

	rawDb, err := adapters.NewDatabase(cfg.Database)
	internal.AssertNoError(err)

	database, err := adapters.NewSqlRepository(rawDb)
	internal.AssertNoError(err)

	mailer := adapters.NewSmtpMailRepo(cfg.Mail)

	queueSize := 100
	eventBus := evbus.New(queueSize)

	auditManager, err := audit.NewManager(eventBus, database)
	internal.AssertNoError(err)

	sessionManager, err := sessions.NewManager(cfg, eventBus, database, auditManager)
	internal.AssertNoError(err)

	userManager, err := users.NewManager(cfg, eventBus, database, sessionManager, auditManager)
	internal.AssertNoError(err)

	notificationManager, err := notifications.NewManager(cfg, eventBus, database, auditManager, mailer)
	internal.AssertNoError(err)

	authenticator, err := auth.NewAuthenticator(cfg, eventBus, database, database)
	internal.AssertNoError(err)

	// ensure the configured super admin account exists
	startupCtx, cancelStartup := context.WithTimeout(ctx, cfg.Advanced.StartupTimeout)
	bootCtx := domain.SetUserInfo(startupCtx, domain.SystemAdminContextUserInfo())
	internal.AssertNoError(userManager.StartupCheck(bootCtx))
	cancelStartup()

	webSession := handlersV0.NewSessionWrapper(cfg)
	webAuth := handlersV0.NewAuthenticationHandler(authenticator, webSession)
	validator := handlersV0.NewValidator()

	apiFrontend := handlersV0.NewRestApi(webSession,
		handlersV0.NewAuthEndpoint(authenticator, webSession),
		handlersV0.NewNotificationEndpoint(notificationManager, webAuth, validator),
		handlersV0.NewSessionEndpoint(sessionManager, webAuth),
		handlersV0.NewAuditEndpoint(auditManager, webAuth),
		handlersV0.NewUserEndpoint(userManager, webAuth, validator),
	)

	webSrv, err := core.NewServer(cfg, apiFrontend)
	internal.AssertNoError(err)

	metricsSrv := adapters.NewMetricsServer(cfg, database)

	go metricsSrv.Run(ctx)
	go webSrv.Run(ctx, cfg.Web.ListeningAddress)

	<-ctx.Done()

	slog.Info("stopped lgl-portal")
}
