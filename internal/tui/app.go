package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/fundme/internal/actions"
	"github.com/kelsos/fundme/internal/async"
	"github.com/kelsos/fundme/internal/config"
	"github.com/kelsos/fundme/internal/logger"
	"github.com/kelsos/fundme/internal/stats"
	"github.com/kelsos/fundme/internal/status"
	"github.com/kelsos/fundme/internal/wallet"
)

// App wires handlers, notifier and receipt tracking into a bubbletea program
type App struct {
	ctx      context.Context
	cfg      *config.Config
	provider *wallet.Provider
	program  *tea.Program

	mu      sync.Mutex
	tracker *async.Tracker
	stopped bool
}

func NewApp(ctx context.Context, cfg *config.Config, provider *wallet.Provider, resolver actions.Resolver, gateway actions.Gateway, counters *stats.Stats) *App {
	app := &App{
		ctx:      ctx,
		cfg:      cfg,
		provider: provider,
	}

	// Send blocks while Update runs, and Show is called from Update
	notifier := status.New(cfg.StatusDelay, status.WithOnChange(func() {
		go app.send(StatusChanged{})
	}))

	handlers := actions.New(provider, resolver, gateway,
		actions.WithCurrencySymbol(cfg.CurrencySymbol),
		actions.WithObserver(func(action actions.Action, state actions.State) {
			app.send(StageMsg{Action: action, State: state})
		}),
	)

	model := NewModel(ctx, handlers, notifier, counters, cfg.CurrencySymbol).WithWatcher(app.watch)
	app.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	return app
}

func (a *App) send(msg tea.Msg) {
	if a.program != nil {
		a.program.Send(msg)
	}
}

// watch lazily starts the tracker on the first submitted transaction.
// It may dial the provider, so it only runs inside commands.
func (a *App) watch(hash common.Hash) <-chan async.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return nil
	}
	if a.tracker == nil {
		conn, err := a.provider.Detect(a.ctx)
		if err != nil {
			logger.Warn("Receipt tracking unavailable: %v", err)
			return nil
		}
		a.tracker = async.NewTracker(a.ctx, conn.Reader, a.cfg.ReceiptPoll)
	}
	return a.tracker.Watch(hash)
}

func (a *App) stopTracker() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	if a.tracker != nil {
		logger.Info("Stopping receipt tracker, %d receipts still pending", a.tracker.Pending())
		a.tracker.Stop()
	}
}

func (a *App) Run() error {
	defer a.stopTracker()

	if _, err := a.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
