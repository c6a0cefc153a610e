package command

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adv1cer/infirmary/internal/core/service"
	"github.com/Adv1cer/infirmary/internal/server/httpserver"
	"github.com/Adv1cer/infirmary/internal/storage/memory"
)

// testServer runs the real router over in-memory stores.
type testServer struct {
	*httptest.Server
	guard *service.GuardService
	store *memory.Store
}

func newTestServer(t *testing.T, mutate func(*httpserver.RouterConfig)) *testServer {
	t.Helper()

	store := memory.New()
	guard, err := service.NewGuardService(store, &service.GuardConfig{
		Secret: []byte("cli-test-secret-value"),
		TTL:    time.Minute,
	})
	if err != nil {
		t.Fatalf("NewGuardService() error = %v", err)
	}

	cfg := httpserver.DefaultRouterConfig()
	cfg.Guard = guard
	cfg.Units = service.NewUnitService(memory.NewUnitStore("tablet", "capsule"))
	cfg.RateLimitRPS = 1000
	cfg.RateLimitBurst = 1000
	if mutate != nil {
		mutate(cfg)
	}

	srv := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, guard: guard, store: store}
}

// run executes the CLI against srv and returns stdout.
func run(t *testing.T, srv *testServer, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	full := append([]string{"csrfguard-cli", "--server", srv.URL}, args...)
	err := app.RunContext(context.Background(), full)
	return stdout.String(), err
}
