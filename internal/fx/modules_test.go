package fx

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"teamstats/internal/api"
	"teamstats/internal/config"
	"teamstats/internal/repository"
	"teamstats/internal/service"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func newTestApp(opts config.Options, targets ...any) *fx.App {
	return fx.New(
		Module,
		fx.Supply(opts),
		fx.Supply(api.Prompt{In: strings.NewReader(""), Out: io.Discard}),
		fx.Provide(func() io.Writer { return &bytes.Buffer{} }),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
		fx.Populate(targets...),
	)
}

func startStop(t *testing.T, app *fx.App) {
	t.Helper()
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
}

func TestModuleBuildsReportService(t *testing.T) {
	t.Setenv("CONSUMER_KEY", "key")
	t.Setenv("CONSUMER_SECRET", "secret")

	var svc *service.ReportService
	app := newTestApp(config.Options{ArchivePath: filepath.Join(t.TempDir(), "stats.db")}, &svc)
	require.NoError(t, app.Err())
	startStop(t, app)
	assert.NotNil(t, svc)
}

func TestModuleReportNeedsCredentials(t *testing.T) {
	t.Setenv("CONSUMER_KEY", "")
	t.Setenv("CONSUMER_SECRET", "")

	var svc *service.ReportService
	app := newTestApp(config.Options{}, &svc)
	assert.ErrorContains(t, app.Err(), "CONSUMER_KEY")
}

func TestModuleHistoryWithoutCredentials(t *testing.T) {
	t.Setenv("CONSUMER_KEY", "")
	t.Setenv("CONSUMER_SECRET", "")

	var snapshots *repository.SnapshotRepository
	app := newTestApp(config.Options{ArchivePath: filepath.Join(t.TempDir(), "stats.db")}, &snapshots)
	require.NoError(t, app.Err())
	startStop(t, app)
	assert.True(t, snapshots.Enabled())
}
