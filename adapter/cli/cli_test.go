package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
)

var reportTime = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

type stubSyncer struct {
	report    *recordsync.Report
	err       error
	projectID int64
	fixture   *recordsync.Fixture
}

func (s *stubSyncer) SyncAll(ctx context.Context) (*recordsync.Report, error) {
	return s.report, s.err
}

func (s *stubSyncer) SyncProject(ctx context.Context, id int64) (*recordsync.Report, error) {
	s.projectID = id
	return s.report, s.err
}

func (s *stubSyncer) Seed(ctx context.Context, fixture *recordsync.Fixture) (*recordsync.Report, error) {
	s.fixture = fixture
	return s.report, s.err
}

func okReport() *recordsync.Report {
	return &recordsync.Report{
		StartedAt:  reportTime,
		FinishedAt: reportTime.Add(1500 * time.Millisecond),
		Synced:     2,
		Schedules:  3,
		Failures:   []recordsync.Failure{},
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() { cmd.SetOut(nil) })
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func withApp(t *testing.T, a *App) {
	t.Helper()
	SetApp(a)
	t.Cleanup(func() { SetApp(nil) })
}

func TestSyncCmd_All(t *testing.T) {
	syncer := &stubSyncer{report: okReport()}
	withApp(t, &App{Syncer: syncer})
	syncProjectID, syncJSON = 0, false

	out, err := run(t, syncCmd)
	require.NoError(t, err)
	assert.Equal(t, "Synced 2 project(s) and 3 schedule(s) in 1.5s.\n", out)
	assert.Zero(t, syncer.projectID)
}

func TestSyncCmd_Project(t *testing.T) {
	syncer := &stubSyncer{report: &recordsync.Report{Synced: 1, Failures: []recordsync.Failure{}}}
	withApp(t, &App{Syncer: syncer})
	syncProjectID = 42
	defer func() { syncProjectID = 0 }()

	_, err := run(t, syncCmd)
	require.NoError(t, err)
	assert.Equal(t, int64(42), syncer.projectID)
}

func TestSyncCmd_ReportsFailures(t *testing.T) {
	report := okReport()
	report.Failures = []recordsync.Failure{
		{Scope: recordsync.ScopeProject, ProjectID: 7, Message: "failed to fetch tasks: boom"},
		{Scope: recordsync.ScopeSchedules, Message: "upstream unavailable"},
	}
	withApp(t, &App{Syncer: &stubSyncer{report: report}})

	out, err := run(t, syncCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 failure(s)")
	assert.Contains(t, out, "project 7: failed to fetch tasks: boom")
	assert.Contains(t, out, "schedules: upstream unavailable")
}

func TestSyncCmd_JSON(t *testing.T) {
	withApp(t, &App{Syncer: &stubSyncer{report: okReport()}})
	syncJSON = true
	defer func() { syncJSON = false }()

	out, err := run(t, syncCmd)
	require.NoError(t, err)
	assert.Contains(t, out, `"synced": 2`)
	assert.Contains(t, out, `"failures": []`)
}

func TestSyncCmd_Errors(t *testing.T) {
	withApp(t, &App{Syncer: &stubSyncer{err: errors.New("listing failed")}})
	_, err := run(t, syncCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing failed")

	SetApp(nil)
	_, err = run(t, syncCmd)
	require.Error(t, err)
}

func TestSeedCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projects:\n  - {id: 1, name: Bus}\n"), 0o600))

	syncer := &stubSyncer{report: okReport()}
	withApp(t, &App{Syncer: syncer})

	out, err := run(t, seedCmd, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 2 project(s)")
	require.NotNil(t, syncer.fixture)
	require.Len(t, syncer.fixture.Projects, 1)
	assert.Equal(t, "Bus", syncer.fixture.Projects[0].Name)
}

func TestSeedCmd_Errors(t *testing.T) {
	withApp(t, &App{Syncer: &stubSyncer{report: okReport()}})

	_, err := run(t, seedCmd, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open fixture")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projects:\n  - {id: 1, colour: red}\n"), 0o600))
	_, err = run(t, seedCmd, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read fixture")
}

func TestMigrateCmd(t *testing.T) {
	applied := []string{"000001_records", "000002_outbox"}
	withApp(t, &App{Migrate: func(ctx context.Context) ([]string, error) { return applied, nil }})

	out, err := run(t, migrateCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 2 migration(s)")
	assert.Contains(t, out, "000002_outbox")

	applied = nil
	out, err = run(t, migrateCmd)
	require.NoError(t, err)
	assert.Equal(t, "Schema is up to date.\n", out)
}

type stubServer struct {
	started  chan struct{}
	stopped  chan struct{}
	shutdown bool
}

func (s *stubServer) Start() error {
	close(s.started)
	<-s.stopped
	return nil
}

func (s *stubServer) Shutdown(ctx context.Context) error {
	s.shutdown = true
	close(s.stopped)
	return nil
}

func TestServeCmd_ShutsDownOnCancel(t *testing.T) {
	server := &stubServer{started: make(chan struct{}), stopped: make(chan struct{})}
	eventsStarted := false
	withApp(t, &App{
		Server: server,
		StartEvents: func(ctx context.Context) error {
			eventsStarted = true
			return nil
		},
		ShutdownTimeout: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	serveCmd.SetOut(&out)
	serveCmd.SetContext(ctx)
	defer serveCmd.SetOut(nil)

	done := make(chan error, 1)
	go func() { done <- serveCmd.RunE(serveCmd, nil) }()

	<-server.started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.True(t, eventsStarted)
	assert.True(t, server.shutdown)
	assert.Contains(t, out.String(), "Server stopped.")
}

func TestServeCmd_EventsFailure(t *testing.T) {
	withApp(t, &App{
		Server:      &stubServer{started: make(chan struct{}), stopped: make(chan struct{})},
		StartEvents: func(ctx context.Context) error { return errors.New("broker down") },
	})

	_, err := run(t, serveCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "masterscheduler dev")
}
