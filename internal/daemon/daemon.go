// Package daemon implements the glue daemon: the command socket, the shared
// state and the coordinator running the daemon's activities.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"github.com/d2verb/glue/internal/coffee"
	"github.com/d2verb/glue/internal/config"
	"github.com/d2verb/glue/internal/eww"
	"github.com/d2verb/glue/internal/hyprland"
	"github.com/d2verb/glue/internal/logging"
	"github.com/d2verb/glue/internal/monitor"
	"github.com/d2verb/glue/internal/protocol"
)

// UI updates the widget shell.
type UI interface {
	Update(ctx context.Context, name string, value any) error
	Open(ctx context.Context, windows ...string) error
	Close(ctx context.Context, windows ...string) error
}

// Compositor answers window manager queries.
type Compositor interface {
	Workspaces(ctx context.Context) ([]hyprland.Workspace, error)
	ActiveWorkspace(ctx context.Context) (hyprland.Workspace, error)
	Exec(ctx context.Context, command string) error
}

// Deps are the daemon's external capabilities. Compositor and Events may be
// nil when no window manager is available.
type Deps struct {
	Inhibitor  coffee.Inhibitor
	Notifier   coffee.Notifier
	UI         UI
	Compositor Compositor
	Events     *hyprland.Listener
	Logger     *slog.Logger
}

// Variable names published to eww.
const (
	VarCoffee    = "coffee"
	VarWorkspace = "workspace"
)

// uiTimeout bounds one UI or compositor call made outside a request.
const uiTimeout = 5 * time.Second

// Daemon coordinates the command server, the compositor event listener and
// the sensor loop around one shared State.
type Daemon struct {
	cfg      *config.Configuration
	socket   string
	deps     Deps
	state    *State
	logger   *slog.Logger
	monitors []monitor.Monitor

	// publishMu serializes remember and the UI push. It is never taken
	// while holding the State lock.
	publishMu sync.Mutex
	// coffeeSeq is the sequence number of the last coffee status pushed.
	// Guarded by publishMu.
	coffeeSeq uint64

	background conc.WaitGroup
	ready      chan struct{}
}

// New creates a daemon listening on socket.
func New(cfg *config.Configuration, socket string, deps Deps) *Daemon {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	machine := coffee.NewMachine(deps.Inhibitor, deps.Notifier, cfg.Coffee.Notification, logging.Component(logger, "coffee"))
	return &Daemon{
		cfg:    cfg,
		socket: socket,
		deps:   deps,
		state:  NewState(machine, cfg.CoffeeIcons()),
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// AddMonitor registers sensors polled by the monitor loop. It must be
// called before Run.
func (d *Daemon) AddMonitor(m ...monitor.Monitor) {
	d.monitors = append(d.monitors, m...)
}

// State returns the shared state.
func (d *Daemon) State() *State {
	return d.state
}

// Ready is closed once the command socket is listening.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Run starts the daemon and blocks until ctx is cancelled or one of its
// activities fails. A bind failure is returned before anything else runs.
func (d *Daemon) Run(ctx context.Context) error {
	d.openWindows(ctx)
	d.autostart(ctx)

	srv, err := Bind[*State](d.socket, logging.Component(d.logger, "ipc"))
	if err != nil {
		return err
	}
	defer srv.Close()
	d.logger.Info("listening", "socket", srv.Addr())
	close(d.ready)

	d.refreshCoffee(ctx)
	d.refreshWorkspaces(ctx)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		return srv.Serve(ctx, d, d.state)
	})
	p.Go(d.listenCompositor)
	p.Go(func(ctx context.Context) error {
		return monitor.Run(ctx, d.cfg.Monitor.Interval, logging.Component(d.logger, "monitor"), d.monitors...)
	})
	err = p.Wait()

	d.background.Wait()
	d.state.close()
	if err != nil {
		d.logger.Error("daemon stopped", "error", err)
	} else {
		d.logger.Info("daemon stopped")
	}
	return err
}

// Handle serves one command. Coffee transitions run under the state lock;
// the response frame and the widget update are written after it is released.
func (d *Daemon) Handle(ctx context.Context, cmd protocol.Command, state *State, w io.Writer) {
	switch c := cmd.(type) {
	case protocol.CoffeeCommand:
		d.handleCoffee(ctx, c, state, w)
	case protocol.NotificationCommand:
		d.handleNotification(ctx, c, w)
	default:
		d.logger.Warn("unhandled command", "command", cmd)
	}
}

func (d *Daemon) handleCoffee(ctx context.Context, c protocol.CoffeeCommand, state *State, w io.Writer) {
	st, seq, err := state.coffee(func(m *coffee.Machine) (protocol.IdleState, error) {
		return m.Apply(ctx, c.Action)
	})
	known := !coffee.StatusUnknown(err)
	if err != nil {
		d.logger.Error("coffee command failed", "action", c.Action, "error", err)
	} else {
		d.logger.Info("coffee", "action", c.Action, "inhibited", st.Inhibited)
	}

	if !known {
		d.respond(w, nil)
		return
	}
	payload, err := protocol.EncodeStatus(st)
	if err != nil {
		d.logger.Error("encode status", "error", err)
		return
	}
	d.respond(w, payload)

	if err := d.publishCoffee(ctx, seq, st); err != nil {
		d.logger.Warn("publish coffee failed", "error", err)
	}
}

func (d *Daemon) handleNotification(ctx context.Context, c protocol.NotificationCommand, w io.Writer) {
	text := c.Text
	if text == "" {
		text = "Test notification"
	}
	if d.deps.Notifier == nil {
		d.logger.Warn("no notifier configured")
	} else if err := d.deps.Notifier.Show(ctx, "glue", text); err != nil {
		d.logger.Error("test notification failed", "error", err)
	}
	d.respond(w, nil)
}

func (d *Daemon) respond(w io.Writer, payload []byte) {
	if err := protocol.WriteMessage(w, payload); err != nil {
		d.logger.Warn("write response failed", "error", err)
	}
}

// Publish sends value to the eww variable name unless it equals the last
// value published under that name.
func (d *Daemon) Publish(ctx context.Context, name string, value any) error {
	encoded, err := eww.Encode(value)
	if err != nil {
		return err
	}

	d.publishMu.Lock()
	defer d.publishMu.Unlock()
	return d.push(ctx, name, encoded)
}

// publishCoffee publishes the status produced by coffee transition seq.
// A status older than the last one pushed is dropped, so a handler that
// was delayed after its transition cannot overwrite a newer status.
func (d *Daemon) publishCoffee(ctx context.Context, seq uint64, st protocol.IdleState) error {
	encoded, err := eww.Encode(coffee.Render(st, d.state.Icons()))
	if err != nil {
		return err
	}

	d.publishMu.Lock()
	defer d.publishMu.Unlock()
	if seq <= d.coffeeSeq {
		d.logger.Debug("dropping stale coffee status", "seq", seq, "latest", d.coffeeSeq)
		return nil
	}
	d.coffeeSeq = seq
	return d.push(ctx, VarCoffee, encoded)
}

// push records and sends an encoded value. The caller holds publishMu.
func (d *Daemon) push(ctx context.Context, name, encoded string) error {
	if !d.state.remember(name, encoded) {
		return nil
	}
	if d.deps.UI == nil {
		return nil
	}
	return d.deps.UI.Update(ctx, name, encoded)
}

// republish pushes every remembered variable again, for windows that were
// just reopened.
func (d *Daemon) republish(ctx context.Context) {
	d.publishMu.Lock()
	defer d.publishMu.Unlock()
	if d.deps.UI == nil {
		return
	}
	for name, value := range d.state.Snapshot() {
		if err := d.deps.UI.Update(ctx, name, value); err != nil {
			d.logger.Warn("republish failed", "variable", name, "error", err)
		}
	}
}

// Reload applies a reloaded configuration. Only the coffee icons take
// effect without a restart.
func (d *Daemon) Reload(ctx context.Context, cfg *config.Configuration) {
	d.state.SetIcons(cfg.CoffeeIcons())
	d.refreshCoffee(ctx)
}

func (d *Daemon) refreshCoffee(ctx context.Context) {
	st, seq, err := d.state.coffee(func(m *coffee.Machine) (protocol.IdleState, error) {
		return m.Get(ctx)
	})
	if err != nil {
		d.logger.Warn("read idle state failed", "error", err)
		return
	}
	if err := d.publishCoffee(ctx, seq, st); err != nil {
		d.logger.Warn("publish coffee failed", "error", err)
	}
}

func (d *Daemon) refreshWorkspaces(ctx context.Context) {
	if d.deps.Compositor == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, uiTimeout)
	defer cancel()

	bar, err := Workspaces(ctx, d.deps.Compositor, d.cfg.Hyprland)
	if err != nil {
		d.logger.Warn("read workspaces failed", "error", err)
		return
	}
	if err := d.Publish(ctx, VarWorkspace, bar); err != nil {
		d.logger.Warn("publish workspaces failed", "error", err)
	}
}

// Workspaces builds the workspace widget from the compositor's current
// workspaces, padded to the configured default count.
func Workspaces(ctx context.Context, c Compositor, cfg config.Hyprland) (eww.Workspaces, error) {
	ws, err := c.Workspaces(ctx)
	if err != nil {
		return eww.Workspaces{}, fmt.Errorf("list workspaces: %w", err)
	}
	active, err := c.ActiveWorkspace(ctx)
	if err != nil {
		return eww.Workspaces{}, fmt.Errorf("read active workspace: %w", err)
	}

	buttons := make([]eww.WorkspaceButton, 0, len(ws))
	for _, w := range ws {
		buttons = append(buttons, eww.NewWorkspaceButton(w.ID, w.Windows, active.ID))
	}
	return eww.NewWorkspaces(buttons, cfg.DefaultSpaces, cfg.WorkspaceIcons), nil
}

func (d *Daemon) listenCompositor(ctx context.Context) error {
	l := d.deps.Events
	if l == nil {
		<-ctx.Done()
		return nil
	}
	l.OnWorkspaceChanged = func(ctx context.Context, ev hyprland.Event) {
		d.refreshWorkspaces(ctx)
	}
	l.OnMonitorAdded = func(ctx context.Context, name string) {
		d.background.Go(func() { d.reopen(ctx, d.cfg.Hyprland.SettleDelay) })
	}
	l.OnMonitorRemoved = func(ctx context.Context, name string) {
		d.background.Go(func() { d.reopen(ctx, 0) })
	}
	if l.Logger == nil {
		l.Logger = logging.Component(d.logger, "hyprland")
	}

	err := l.Listen(ctx)
	if errors.Is(err, hyprland.ErrNotRunning) {
		d.logger.Warn("hyprland not detected, workspace events disabled")
		<-ctx.Done()
		return nil
	}
	return err
}

// reopen waits for the compositor to settle after a monitor change, then
// reopens the windows and forces every variable back into them.
func (d *Daemon) reopen(ctx context.Context, settle time.Duration) {
	if settle > 0 {
		select {
		case <-time.After(settle):
		case <-ctx.Done():
			return
		}
	}
	d.closeWindows(ctx)
	d.openWindows(ctx)
	d.refreshWorkspaces(ctx)
	d.republish(ctx)
}

// closeWindows closes the configured windows so eww recreates them on the
// current monitor layout.
func (d *Daemon) closeWindows(ctx context.Context) {
	if d.deps.UI == nil || len(d.cfg.General.Windows) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, uiTimeout)
	defer cancel()
	if err := d.deps.UI.Close(ctx, d.cfg.General.Windows...); err != nil {
		d.logger.Debug("close windows failed", "windows", d.cfg.General.Windows, "error", err)
	}
}

func (d *Daemon) openWindows(ctx context.Context) {
	if d.deps.UI == nil || len(d.cfg.General.Windows) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, uiTimeout)
	defer cancel()
	if err := d.deps.UI.Open(ctx, d.cfg.General.Windows...); err != nil {
		d.logger.Warn("open windows failed", "windows", d.cfg.General.Windows, "error", err)
	}
}

func (d *Daemon) autostart(ctx context.Context) {
	for _, command := range d.cfg.Autostart {
		if d.deps.Compositor == nil {
			d.logger.Warn("autostart skipped, no compositor", "command", command)
			continue
		}
		ctx, cancel := context.WithTimeout(ctx, uiTimeout)
		err := d.deps.Compositor.Exec(ctx, command)
		cancel()
		if err != nil {
			d.logger.Warn("autostart failed", "command", command, "error", err)
			continue
		}
		d.logger.Info("autostarted", "command", command)
	}
}
