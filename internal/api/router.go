package api

import (
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/govdl/govdl/internal/api/controllers"
	"github.com/govdl/govdl/internal/app"
	"github.com/govdl/govdl/internal/engine"
	"github.com/govdl/govdl/internal/tracker"
)

func RegisterRoutes(e *echo.Echo, app *app.Context, runner *engine.Runner, tr *tracker.Tracker) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			app.Logger.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	dlCtrl := &controllers.DownloadController{App: app, Runner: runner, Tracker: tr}

	// Synchronous probe: metadata + format list
	e.POST("/get_video_info", dlCtrl.Probe)

	// Asynchronous download lifecycle
	e.GET("/start_download", dlCtrl.Start)
	e.GET("/download_progress/:id", dlCtrl.Progress)
	e.GET("/download_video/:id", dlCtrl.File)

	// Terminal job history (persistent)
	e.GET("/download_history", dlCtrl.History)
}
