package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// fakeOutput satisfies [Output] without an audio device.
type fakeOutput struct {
	mu         sync.Mutex
	initCalls  int
	playCalls  int
	clearCalls int
}

func (f *fakeOutput) Init(sr beep.SampleRate, bufferSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	return nil
}

func (f *fakeOutput) Play(s beep.Streamer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playCalls++
}

func (f *fakeOutput) Lock()   { f.mu.Lock() }
func (f *fakeOutput) Unlock() { f.mu.Unlock() }

func (f *fakeOutput) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
}

// newLoadedController builds a controller with a fake output and a silent
// two-second clip already in place, as if Load had succeeded.
func newLoadedController(t *testing.T) (*Controller, *fakeOutput) {
	t.Helper()

	out := &fakeOutput{}
	c := NewController(ControllerOpts{Output: out})

	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	buffer := beep.NewBuffer(format)
	buffer.Append(beep.Silence(format.SampleRate.N(2 * time.Second)))

	c.buffer = buffer
	c.format = format
	c.sampleRate = format.SampleRate
	c.initialized = true

	return c, out
}

func TestLoad(t *testing.T) {
	t.Run("Non-200 Response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		c := NewController(ControllerOpts{Output: &fakeOutput{}, Client: server.Client()})
		err := c.Load(context.Background(), server.URL+"/preview.mp3")

		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("expected LoadError, got %v", err)
		}
		if loadErr.Status != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", loadErr.Status)
		}
	})

	t.Run("Empty URL", func(t *testing.T) {
		c := NewController(ControllerOpts{Output: &fakeOutput{}})
		err := c.Load(context.Background(), "")

		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("expected LoadError, got %v", err)
		}
		if loadErr.Error() != "no preview URL available" {
			t.Errorf("unexpected message: %q", loadErr.Error())
		}
	})

	t.Run("Undecodable Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("this is not an mp3"))
		}))
		defer server.Close()

		c := NewController(ControllerOpts{Output: &fakeOutput{}, Client: server.Client()})
		err := c.Load(context.Background(), server.URL)

		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("expected LoadError for a non-mp3 body, got %v", err)
		}
		if loadErr.Cause == nil {
			t.Error("expected decode failure recorded as cause")
		}
	})

	t.Run("Unreachable Host", func(t *testing.T) {
		c := NewController(ControllerOpts{
			Output: &fakeOutput{},
			Client: &http.Client{Timeout: 200 * time.Millisecond},
		})
		err := c.Load(context.Background(), "http://127.0.0.1:1/preview.mp3")

		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("expected LoadError for an unreachable host, got %v", err)
		}
		if loadErr.Cause == nil {
			t.Error("expected fetch failure recorded as cause")
		}
	})
}

func TestPlayForDuration(t *testing.T) {
	t.Run("Completes After Wall-Clock Duration", func(t *testing.T) {
		c, out := newLoadedController(t)

		var progressCalls int
		completed := make(chan struct{})

		c.PlayForDuration(0.35,
			func(elapsed, total float64) {
				progressCalls++
				if elapsed > total {
					t.Errorf("elapsed %.2f exceeded total %.2f", elapsed, total)
				}
			},
			func() { close(completed) },
		)

		if !c.IsPlaying() {
			t.Error("expected playing state after start")
		}

		select {
		case <-completed:
		case <-time.After(2 * time.Second):
			t.Fatal("completion callback never fired")
		}

		if c.IsPlaying() {
			t.Error("expected playing state cleared after completion")
		}
		if progressCalls < 2 {
			t.Errorf("expected at least 2 progress ticks, got %d", progressCalls)
		}
		if out.playCalls != 1 {
			t.Errorf("expected one output play, got %d", out.playCalls)
		}
	})

	t.Run("No-Op Without A Loaded Clip", func(t *testing.T) {
		out := &fakeOutput{}
		c := NewController(ControllerOpts{Output: out})

		c.PlayForDuration(1, nil, func() {
			t.Error("completion must not fire when nothing is loaded")
		})

		if c.IsPlaying() || out.playCalls != 0 {
			t.Error("expected no playback without a loaded clip")
		}
	})

	t.Run("Restart Supersedes Previous Callbacks", func(t *testing.T) {
		c, _ := newLoadedController(t)

		firstCompleted := false
		secondCompleted := make(chan struct{})

		c.PlayForDuration(0.2, nil, func() { firstCompleted = true })
		c.PlayForDuration(0.2, nil, func() { close(secondCompleted) })

		select {
		case <-secondCompleted:
		case <-time.After(2 * time.Second):
			t.Fatal("second completion never fired")
		}

		time.Sleep(100 * time.Millisecond)
		if firstCompleted {
			t.Error("superseded clip's completion must not fire")
		}
	})
}

func TestStop(t *testing.T) {
	t.Run("Cancels Pending Completion", func(t *testing.T) {
		c, _ := newLoadedController(t)

		completed := false
		c.PlayForDuration(0.2, nil, func() { completed = true })
		c.Stop()

		if c.IsPlaying() {
			t.Error("expected playing state cleared after stop")
		}

		time.Sleep(400 * time.Millisecond)
		if completed {
			t.Error("completion must not fire after stop")
		}
	})

	t.Run("Idempotent When Idle", func(t *testing.T) {
		c, _ := newLoadedController(t)
		c.Stop()
		c.Stop()
	})
}

func TestPause(t *testing.T) {
	c, _ := newLoadedController(t)

	completed := false
	c.PlayForDuration(0.2, nil, func() { completed = true })
	c.Pause()
	c.Pause()

	if c.IsPlaying() {
		t.Error("expected playing state cleared after pause")
	}

	time.Sleep(400 * time.Millisecond)
	if completed {
		t.Error("completion must not fire while paused")
	}
}

func TestSetVolume(t *testing.T) {
	c, _ := newLoadedController(t)

	cases := []struct {
		in   float64
		want float64
	}{
		{0.5, 0.5},
		{0, 0},
		{1, 1},
		{1.5, 1},
		{-0.2, 0},
	}
	for _, tc := range cases {
		c.SetVolume(tc.in)
		if got := c.Volume(); got != tc.want {
			t.Errorf("SetVolume(%.1f): volume = %.1f, want %.1f", tc.in, got, tc.want)
		}
	}
}

func TestVolumeGain(t *testing.T) {
	if g := volumeGain(1); g != 0 {
		t.Errorf("expected unity gain at full volume, got %f", g)
	}
	if g := volumeGain(0.5); g != -1 {
		t.Errorf("expected -1 at half volume, got %f", g)
	}
	if g := volumeGain(0); g != 0 {
		t.Errorf("expected zero gain placeholder when silent, got %f", g)
	}
}

func TestDestroy(t *testing.T) {
	c, _ := newLoadedController(t)

	c.PlayForDuration(0.2, nil, nil)
	c.Destroy()

	if c.IsPlaying() {
		t.Error("expected playback stopped by destroy")
	}

	c.PlayForDuration(0.2, nil, func() {
		t.Error("completion must not fire after destroy dropped the clip")
	})
	time.Sleep(300 * time.Millisecond)
}
