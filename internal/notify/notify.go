// Package notify shows desktop notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/esiqveland/notify"
	"github.com/gen2brain/beeep"
	"github.com/godbus/dbus/v5"
)

// AppName is the application name attached to notifications.
const AppName = "glue"

// Notifier shows a notification.
type Notifier interface {
	Show(ctx context.Context, summary, body string) error
}

// sender is the subset of notify.Notifier used by DBus.
type sender interface {
	SendNotification(n notify.Notification) (uint32, error)
	Close() error
}

// DBus sends notifications to org.freedesktop.Notifications.
type DBus struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	sender  sender
	icon    string
	timeout time.Duration
}

// NewDBus connects to the session bus. A zero timeout leaves expiry to the
// notification server.
func NewDBus(icon string, timeout time.Duration) (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	n, err := notify.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create notifier: %w", err)
	}
	return &DBus{conn: conn, sender: n, icon: icon, timeout: timeout}, nil
}

func (d *DBus) Show(ctx context.Context, summary, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	n := notify.Notification{
		AppName:       AppName,
		AppIcon:       d.icon,
		Summary:       summary,
		Body:          body,
		ExpireTimeout: d.timeout,
	}
	if _, err := d.sender.SendNotification(n); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// Close stops the notifier and closes its bus connection.
func (d *DBus) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.sender.Close()
	if d.conn != nil {
		if cerr := d.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Beeep shows notifications through gen2brain/beeep.
type Beeep struct {
	Icon string
}

// beeepNotify is swapped in tests.
var beeepNotify = func(title, message, icon string) error {
	return beeep.Notify(title, message, icon)
}

func (b Beeep) Show(ctx context.Context, summary, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := beeepNotify(summary, body, b.Icon); err != nil {
		return fmt.Errorf("beeep notify: %w", err)
	}
	return nil
}

// Fallback tries Primary and uses Secondary when it fails.
type Fallback struct {
	Primary   Notifier
	Secondary Notifier
}

func (f Fallback) Show(ctx context.Context, summary, body string) error {
	if f.Primary == nil {
		return f.Secondary.Show(ctx, summary, body)
	}
	perr := f.Primary.Show(ctx, summary, body)
	if perr == nil || f.Secondary == nil {
		return perr
	}
	if serr := f.Secondary.Show(ctx, summary, body); serr != nil {
		return errors.Join(perr, serr)
	}
	return nil
}
