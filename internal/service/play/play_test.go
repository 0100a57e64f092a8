package play

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	api "github.com/oshokin/chessclock/internal/api/grpc/clock"
	"github.com/oshokin/chessclock/internal/config"
	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/repository/snapshot"
	"github.com/oshokin/chessclock/internal/session"
)

var (
	errTestLoad = errors.New("test load error")
	errNoTTY    = errors.New("no terminal")
)

// brokenScreen is a terminal that cannot be initialised.
type brokenScreen struct {
	tcell.SimulationScreen
}

// Init always fails.
func (brokenScreen) Init() error {
	return errNoTTY
}

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// saved is the snapshot returned by Load.
	saved *snapshot.Snapshot
	// loadErr is the error to return from Load operations.
	loadErr error
	// deleted counts Delete calls.
	deleted int
}

// Load returns the stored snapshot or ErrNotFound.
func (m *memoryRepository) Load(context.Context) (*snapshot.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}

	if m.saved == nil {
		return nil, snapshot.ErrNotFound
	}

	return m.saved, nil
}

// Save stores s in memory.
func (m *memoryRepository) Save(_ context.Context, s *snapshot.Snapshot) error {
	m.saved = s

	return nil
}

// Delete forgets the stored snapshot.
func (m *memoryRepository) Delete(context.Context) error {
	m.saved = nil
	m.deleted++

	return nil
}

// TestNewController_Fresh checks that a new session ignores any snapshot.
func TestNewController_Fresh(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	repo := &memoryRepository{loadErr: errTestLoad}

	ctrl, err := newController(context.Background(), settings, repo, false)
	require.NoError(t, err)
	require.Equal(t, clock.Idle, ctrl.State().Phase)
	require.Equal(t, settings.Clock(), ctrl.Config())
}

// TestNewController_Resume checks that a saved running game comes back paused.
func TestNewController_Resume(t *testing.T) {
	t.Parallel()

	saved := clock.Config{MinutesPlayer1: 3, IncrementSeconds: 1, SoundEnabled: true}
	state := clock.NewState(saved)
	state.Phase = clock.Running
	state.ActiveSide = clock.Player2
	state.Remaining2 = 90 * time.Second
	state.Moves = 5

	repo := &memoryRepository{saved: &snapshot.Snapshot{Config: saved, State: state}}

	settings := config.Default()

	ctrl, err := newController(context.Background(), settings, repo, true)
	require.NoError(t, err)

	got := ctrl.State()
	require.Equal(t, clock.Paused, got.Phase)
	require.Equal(t, state.SessionID, got.SessionID)
	require.Equal(t, 90*time.Second, got.Remaining2)
	require.Equal(t, saved, ctrl.Config())

	// The current settings wait for the next reset.
	staged, ok := ctrl.Staged()
	require.True(t, ok)
	require.Equal(t, settings.Clock(), staged)
}

// TestNewController_ResumeErrors checks missing and unreadable snapshots.
func TestNewController_ResumeErrors(t *testing.T) {
	t.Parallel()

	ctrl, err := newController(context.Background(), config.Default(), new(memoryRepository), true)
	require.NoError(t, err)
	require.Equal(t, clock.Idle, ctrl.State().Phase)

	_, err = newController(context.Background(), config.Default(), &memoryRepository{loadErr: errTestLoad}, true)
	require.ErrorIs(t, err, errTestLoad)
}

// TestFinishSession checks that only games in progress are saved.
func TestFinishSession(t *testing.T) {
	t.Parallel()

	ctrl, err := session.NewController(clock.DefaultConfig())
	require.NoError(t, err)

	repo := new(memoryRepository)

	require.NoError(t, finishSession(context.Background(), repo, ctrl))
	require.Nil(t, repo.saved)
	require.Equal(t, 1, repo.deleted)

	_, err = ctrl.Handle(session.SelectSide{Side: clock.Player1})
	require.NoError(t, err)

	require.NoError(t, finishSession(context.Background(), repo, ctrl))
	require.NotNil(t, repo.saved)
	require.Equal(t, clock.Running, repo.saved.State.Phase)
	require.False(t, repo.saved.SavedAt.IsZero())
}

// TestLoadSettings checks command-line overrides and validation.
func TestLoadSettings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	settings, err := loadSettings(&Options{
		ConfigPath:    filepath.Join(dir, "absent.yaml"),
		ListenAddress: "127.0.0.1:0",
		SnapshotFile:  filepath.Join(dir, "saved.json"),
	})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:0", settings.ListenAddress)
	require.Equal(t, filepath.Join(dir, "saved.json"), settings.SnapshotFile)

	_, err = loadSettings(&Options{
		ConfigPath:    filepath.Join(dir, "absent.yaml"),
		ListenAddress: "bad:address",
	})
	require.Error(t, err)
}

// TestServeRemote checks that the remote control serves requests and stops with ctx.
func TestServeRemote(t *testing.T) {
	t.Parallel()

	ctrl, err := session.NewController(clock.DefaultConfig())
	require.NoError(t, err)

	runner := session.NewRunner(ctrl, session.WithClock(clockwork.NewFakeClock()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = runner.Run(ctx) }()

	lis := bufconn.Listen(1 << 20)
	served := make(chan error, 1)

	go func() { served <- serveRemote(ctx, lis, runner) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	resp, err := api.NewClockServiceClient(conn).GetState(ctx)
	require.NoError(t, err)
	require.NotNil(t, resp.GetFields()["state"])

	cancel()

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("remote control did not stop")
	}
}

// screenContains reports whether the simulation screen shows text.
func screenContains(screen tcell.SimulationScreen, text string) bool {
	cells, width, height := screen.GetContents()

	var b strings.Builder

	for i := range width * height {
		if runes := cells[i].Runes; len(runes) > 0 {
			b.WriteRune(runes[0])
		} else {
			b.WriteRune(' ')
		}

		if (i+1)%width == 0 {
			b.WriteRune('\n')
		}
	}

	return strings.Contains(b.String(), text)
}

// playUntil runs a session on a simulation screen, waits for ready, then
// applies act and quits.
func playUntil(t *testing.T, opts *Options, ready string, act func(tcell.SimulationScreen)) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	opts.Screen = screen

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), opts) }()

	require.Eventually(t, func() bool { return screenContains(screen, ready) }, 5*time.Second, 20*time.Millisecond)

	act(screen)

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
}

// TestRun_SaveAndResume plays a session, quits mid-game and resumes it paused.
func TestRun_SaveAndResume(t *testing.T) { //nolint:paralleltest // Run replaces the global logger.
	dir := t.TempDir()
	snapshotFile := filepath.Join(dir, "snapshot.json")

	opts := func(resume bool) *Options {
		return &Options{
			ConfigPath:   filepath.Join(dir, config.DefaultConfigFilename),
			LogFile:      filepath.Join(dir, "chessclock.log"),
			SnapshotFile: snapshotFile,
			Resume:       resume,
			NoAudio:      true,
		}
	}

	playUntil(t, opts(false), "PLAYER 1", func(screen tcell.SimulationScreen) {
		// Player 1 clicks their half: player 2's clock starts.
		screen.InjectMouse(5, 3, tcell.Button1, tcell.ModNone)
		screen.InjectMouse(5, 3, tcell.ButtonNone, tcell.ModNone)

		require.Eventually(t, func() bool {
			return screenContains(screen, "player 2 to move")
		}, 5*time.Second, 20*time.Millisecond)
	})

	saved, err := snapshot.NewFileRepository(snapshotFile).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, clock.Running, saved.State.Phase)
	require.Equal(t, clock.Player2, saved.State.ActiveSide)

	playUntil(t, opts(true), "Paused", func(tcell.SimulationScreen) {})

	// Quitting a paused game keeps it saved.
	_, err = snapshot.NewFileRepository(snapshotFile).Load(context.Background())
	require.NoError(t, err)
}

// TestRun_ReleasesListenerWhenTerminalFails checks the remote port is free again after a failed start.
func TestRun_ReleasesListenerWhenTerminalFails(t *testing.T) { //nolint:paralleltest // Run replaces the global logger.
	dir := t.TempDir()

	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := free.Addr().String()
	require.NoError(t, free.Close())

	err = Run(context.Background(), &Options{
		ConfigPath:    filepath.Join(dir, config.DefaultConfigFilename),
		LogFile:       filepath.Join(dir, "chessclock.log"),
		ListenAddress: addr,
		SnapshotFile:  filepath.Join(dir, "snapshot.json"),
		NoAudio:       true,
		Screen:        brokenScreen{SimulationScreen: tcell.NewSimulationScreen("UTF-8")},
	})
	require.ErrorIs(t, err, errNoTTY)

	lis, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, lis.Close())
}
