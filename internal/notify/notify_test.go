package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/esiqveland/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent   []notify.Notification
	err    error
	closed bool
}

func (f *fakeSender) SendNotification(n notify.Notification) (uint32, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, n)
	return uint32(len(f.sent)), nil
}

func (f *fakeSender) Close() error {
	f.closed = true
	return nil
}

type recorder struct {
	calls int
	err   error
}

func (r *recorder) Show(ctx context.Context, summary, body string) error {
	r.calls++
	return r.err
}

func TestDBus_Show(t *testing.T) {
	s := &fakeSender{}
	d := &DBus{sender: s, icon: "dialog-information", timeout: 5 * time.Second}

	err := d.Show(context.Background(), "Coffee still required?", "The system has been caffeinated for 15m0s")

	require.NoError(t, err)
	require.Len(t, s.sent, 1)
	assert.Equal(t, AppName, s.sent[0].AppName)
	assert.Equal(t, "dialog-information", s.sent[0].AppIcon)
	assert.Equal(t, "Coffee still required?", s.sent[0].Summary)
	assert.Equal(t, 5*time.Second, s.sent[0].ExpireTimeout)

	require.NoError(t, d.Close())
	assert.True(t, s.closed)
}

func TestDBus_ShowError(t *testing.T) {
	cause := errors.New("no notification server")
	d := &DBus{sender: &fakeSender{err: cause}}

	err := d.Show(context.Background(), "a", "b")

	assert.ErrorIs(t, err, cause)
}

func TestDBus_CancelledContext(t *testing.T) {
	s := &fakeSender{}
	d := &DBus{sender: s}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Show(ctx, "a", "b")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.sent)
}

func TestBeeep_Show(t *testing.T) {
	var got [3]string
	orig := beeepNotify
	beeepNotify = func(title, message, icon string) error {
		got = [3]string{title, message, icon}
		return nil
	}
	t.Cleanup(func() { beeepNotify = orig })

	err := Beeep{Icon: "glue.png"}.Show(context.Background(), "glue", "Test notification")

	require.NoError(t, err)
	assert.Equal(t, [3]string{"glue", "Test notification", "glue.png"}, got)
}

func TestFallback(t *testing.T) {
	perr := errors.New("primary down")
	serr := errors.New("secondary down")

	tests := []struct {
		name           string
		primary        *recorder
		secondary      *recorder
		wantErr        []error
		wantSecondCall int
	}{
		{"primary ok", &recorder{}, &recorder{}, nil, 0},
		{"primary fails", &recorder{err: perr}, &recorder{}, nil, 1},
		{"both fail", &recorder{err: perr}, &recorder{err: serr}, []error{perr, serr}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Fallback{Primary: tt.primary, Secondary: tt.secondary}

			err := f.Show(context.Background(), "s", "b")

			if tt.wantErr == nil {
				assert.NoError(t, err)
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
			assert.Equal(t, 1, tt.primary.calls)
			assert.Equal(t, tt.wantSecondCall, tt.secondary.calls)
		})
	}
}

func TestFallback_NoPrimary(t *testing.T) {
	s := &recorder{}

	require.NoError(t, Fallback{Secondary: s}.Show(context.Background(), "s", "b"))
	assert.Equal(t, 1, s.calls)
}
