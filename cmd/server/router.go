package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/career-coach/internal/api"
	apiMiddleware "github.com/phrazzld/career-coach/internal/api/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.CORS)

	handlers := api.Handlers{
		Coach: api.NewCoachHandler(app.coach, app.logger),
		Stream: api.NewStreamHandler(app.sessions, app.orchestrator, app.pool, api.StreamOptions{
			ChannelTimeout: app.config.Stream.ChannelTimeout,
			ReconnectHint:  app.config.Stream.ReconnectHint,
			WriteTimeout:   app.config.Stream.WriteTimeout,
		}, app.logger),
		Health: api.NewHealthHandler(app.sessions),
	}
	handlers.Routes(r)

	return otelhttp.NewHandler(r, "career-coach",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
