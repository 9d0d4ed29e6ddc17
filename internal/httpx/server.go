package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
)

// UploadTimeout matches the storefront's five minute upload budget.
const UploadTimeout = 300 * time.Second

// Serve runs h on addr until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, name, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       UploadTimeout,
		WriteTimeout:      UploadTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", name, addr)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Printf("%s shutting down", name)
	return srv.Shutdown(shutdownCtx)
}
