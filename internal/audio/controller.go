// package audio wraps beep playback of track preview clips behind the
// game's timing rules: clips play for a fixed number of seconds against a
// wall clock, with progress ticks every 100ms.
package audio

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songsnap/internal/shared"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
)

// DefaultVolume is the initial playback volume on a 0..1 scale.
const DefaultVolume = 0.8

// progressInterval is how often the progress callback fires during playback.
const progressInterval = 100 * time.Millisecond

// LoadError reports a preview that could not be fetched or decoded into
// playable audio. A missing URL, a failed fetch, a non-200 response, and an
// undecodable body all surface as *LoadError so callers can treat "this
// round's clip is unplayable" uniformly.
type LoadError struct {
	URL    string
	Status int   // HTTP status, set when the response came back non-200
	Cause  error // underlying fetch or decode failure, when one exists
}

func (e *LoadError) Error() string {
	switch {
	case e.URL == "":
		return "no preview URL available"
	case e.Cause != nil:
		return fmt.Sprintf("preview failed to load: %s: %v", e.URL, e.Cause)
	default:
		return fmt.Sprintf("preview fetch failed with status %d: %s", e.Status, e.URL)
	}
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Output is the audio device boundary. The speaker-backed implementation is
// the real one; tests substitute a silent output so playback logic runs
// without a device.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Clear()
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Lock()                { speaker.Lock() }
func (speakerOutput) Unlock()              { speaker.Unlock() }
func (speakerOutput) Clear()               { speaker.Clear() }

// Controller owns one decoded preview at a time and plays timed slices of it.
// Timing is wall-clock: a clip "completes" when its tier duration elapses,
// regardless of how much audio the device actually produced. At most one
// timer/ticker pair is live; starting a new clip or stopping cancels the
// previous pair and its callbacks.
type Controller struct {
	logger *log.Logger
	client *http.Client
	out    Output

	mu          sync.Mutex
	buffer      *beep.Buffer
	format      beep.Format
	initialized bool
	sampleRate  beep.SampleRate
	ctrl        *beep.Ctrl
	vol         *effects.Volume
	volume      float64
	playing     bool
	generation  int
	done        chan struct{}
}

// ControllerOpts configures a [Controller]. Zero values select the real
// speaker output, a default HTTP client, and [DefaultVolume].
type ControllerOpts struct {
	Logger *log.Logger
	Client *http.Client
	Output Output
	Volume float64
}

// NewController creates a playback controller. The audio device is not opened
// until the first Load.
func NewController(opts ControllerOpts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Output == nil {
		opts.Output = speakerOutput{}
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = DefaultVolume
	}

	return &Controller{
		logger: opts.Logger,
		client: opts.Client,
		out:    opts.Output,
		volume: opts.Volume,
	}
}

// Load fetches and decodes a preview, replacing the previously loaded one.
// Any active playback is stopped first. The device is initialized lazily from
// the first clip's sample rate; later clips at other rates are resampled at
// play time.
func (c *Controller) Load(ctx context.Context, url string) error {
	if url == "" {
		return &LoadError{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &LoadError{URL: url, Cause: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &LoadError{URL: url, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return &LoadError{URL: url, Status: resp.StatusCode}
	}

	streamer, format, err := mp3.Decode(resp.Body)
	if err != nil {
		resp.Body.Close()
		return &LoadError{URL: url, Cause: err}
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	streamer.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	if !c.initialized {
		if err := c.out.Init(format.SampleRate, format.SampleRate.N(progressInterval)); err != nil {
			return fmt.Errorf("initialize audio output: %w", err)
		}
		c.initialized = true
		c.sampleRate = format.SampleRate
	}

	c.buffer = buffer
	c.format = format

	return nil
}

// PlayForDuration plays the loaded clip from the start for the given number
// of seconds. onProgress fires every 100ms with elapsed and total seconds;
// onComplete fires once when the duration elapses. Starting a new clip while
// one is playing silences the old one and drops its pending callbacks. A
// no-op when nothing is loaded.
func (c *Controller) PlayForDuration(seconds float64, onProgress func(elapsed, total float64), onComplete func()) {
	c.mu.Lock()

	if c.buffer == nil || seconds <= 0 {
		c.mu.Unlock()
		return
	}

	c.stopLocked()
	c.generation++
	gen := c.generation

	duration := time.Duration(seconds * float64(time.Second))
	samples := c.format.SampleRate.N(duration)
	if samples > c.buffer.Len() {
		samples = c.buffer.Len()
	}

	var streamer beep.Streamer = beep.Take(samples, c.buffer.Streamer(0, c.buffer.Len()))
	if c.format.SampleRate != c.sampleRate {
		streamer = beep.Resample(4, c.format.SampleRate, c.sampleRate, streamer)
	}

	ctrl := &beep.Ctrl{Streamer: streamer}
	vol := &effects.Volume{
		Streamer: ctrl,
		Base:     2,
		Volume:   volumeGain(c.volume),
		Silent:   c.volume == 0,
	}

	c.ctrl, c.vol = ctrl, vol
	c.playing = true
	done := make(chan struct{})
	c.done = done

	c.out.Play(vol)
	c.mu.Unlock()

	go c.watch(gen, duration, done, onProgress, onComplete)
}

// watch drives the wall-clock timing of one clip.
func (c *Controller) watch(gen int, duration time.Duration, done chan struct{}, onProgress func(elapsed, total float64), onComplete func()) {
	start := time.Now()
	total := duration.Seconds()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	timer := time.NewTimer(duration)
	defer timer.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if onProgress != nil {
				onProgress(math.Min(time.Since(start).Seconds(), total), total)
			}
		case <-timer.C:
			c.mu.Lock()
			if gen != c.generation {
				c.mu.Unlock()
				return
			}
			c.clearLocked()
			c.mu.Unlock()

			if onProgress != nil {
				onProgress(total, total)
			}
			if onComplete != nil {
				onComplete()
			}
			return
		}
	}
}

// Pause silences the current clip and suspends its callbacks. Idempotent.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		return
	}

	if c.ctrl != nil {
		c.out.Lock()
		c.ctrl.Paused = true
		c.out.Unlock()
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.playing = false
}

// Stop halts playback and cancels any pending callbacks. Idempotent; safe to
// call when nothing is playing.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// stopLocked cancels the live watcher and clears the output. Callers hold mu.
func (c *Controller) stopLocked() {
	c.generation++
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.clearLocked()
}

// clearLocked drops the active streamer state. Callers hold mu.
func (c *Controller) clearLocked() {
	if c.playing || c.ctrl != nil {
		c.out.Clear()
	}
	c.ctrl = nil
	c.vol = nil
	c.playing = false
}

// IsPlaying reports whether a clip is actively playing.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// SetVolume sets the playback volume on a 0..1 scale, clamping out-of-range
// values. Takes effect immediately on the active clip.
func (c *Controller) SetVolume(v float64) {
	v = math.Max(0, math.Min(1, v))

	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = v
	if c.vol != nil {
		c.out.Lock()
		c.vol.Volume = volumeGain(v)
		c.vol.Silent = v == 0
		c.out.Unlock()
	}
}

// Volume returns the current volume on a 0..1 scale.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Destroy stops playback and releases the loaded clip. The controller may be
// reused after another Load.
func (c *Controller) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.buffer = nil
}

// volumeGain maps a linear 0..1 volume to the base-2 exponential scale the
// volume effect expects, with 1.0 as unity gain.
func volumeGain(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Log2(v)
}
