package bootstrap

import "github.com/dalemusser/waffle/app"

// appName is the service name WAFFLE reports in its startup logs.
const appName = "studyhub"

// Hooks is the studyhub lifecycle, run in field order by app.Run:
// STUDYHUB_* config is loaded and checked, Mongo is dialled and the
// audit/token/hub dependencies are built, collections get their validators
// and indexes, timeouts and the audit sweeper start, then the chi API is
// served until Shutdown closes the hub and disconnects.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           appName,
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
