package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/eedm-api/student-services/api/handlers"
	"github.com/eedm-api/student-services/api/middleware"
	"github.com/eedm-api/student-services/api/services"
	docs "github.com/eedm-api/student-services/docs"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Student Services EEDM API
// @version v1
// @description Student records reference and transactional data served as EEDM and legacy resources.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer studentDB.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		publisher := newNotifier(appCfg.Pulsar)
		defer publisher.Close()

		resourceCache, closeCache := newCache(ctx, appCfg.Redis)
		defer closeCache()

		catalog := services.NewCatalog(studentDB, resourceCache, publisher)

		// Create routes
		r := mux.NewRouter()
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
		r.HandleFunc("/health", handlers.Health(studentDB)).Methods(http.MethodGet)

		// Docs
		docs.SwaggerInfo.Host = appCfg.Host
		docs.SwaggerInfo.BasePath = appCfg.BasePath
		r.PathPrefix(appCfg.DocsPath).Handler(httpSwagger.Handler(
			httpSwagger.URL(path.Join(appCfg.DocsPath, "/doc.json")),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("none"),
			httpSwagger.DomID("swagger-ui"),
		)).Methods(http.MethodGet)

		// Register the routes
		api := r.NewRoute().Subrouter()
		if appCfg.BasePath != "" {
			api = r.PathPrefix(appCfg.BasePath).Subrouter()
		}

		// Apply the middleware to the API routes
		api.Use(middleware.Metrics)
		api.Use(middleware.WithLogger)
		api.Use(middleware.JWTMiddleware)

		handlers.RegisterCatalog(api, catalog, appCfg.Paging)

		srv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown failed")
			}
		}()

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("could not start server")
		}
		log.Info().Msg("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")

}
