package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ListenAndServe serves handler on cfg.Addr until ctx is done, then shuts
// down gracefully within cfg.ShutdownTimeout.
func ListenAndServe(ctx context.Context, cfg Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	log.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
