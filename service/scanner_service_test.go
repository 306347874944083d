package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katalog-produk/models"
)

// fakeCamera records lifecycle calls and lets tests emit decodes
type fakeCamera struct {
	mu        sync.Mutex
	startErr  error
	starts    int
	stops     int
	cfg       models.ScannerConfig
	onDecode  func(string)
	onFailure func(error)
	// duringStart runs inside Start before it returns
	duringStart func()
	// duringStop runs inside Stop before it returns
	duringStop func()
}

func (c *fakeCamera) Start(ctx context.Context, cfg models.ScannerConfig, onDecode func(string), onFailure func(error)) error {
	c.mu.Lock()
	c.starts++
	c.cfg = cfg
	c.onDecode = onDecode
	c.onFailure = onFailure
	hook := c.duringStart
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return c.startErr
}

func (c *fakeCamera) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.stops++
	hook := c.duringStop
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (c *fakeCamera) emit(text string) {
	c.mu.Lock()
	handler := c.onDecode
	c.mu.Unlock()
	handler(text)
}

func (c *fakeCamera) fail(err error) {
	c.mu.Lock()
	handler := c.onFailure
	c.mu.Unlock()
	handler(err)
}

func (c *fakeCamera) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts, c.stops
}

type recordingModal struct {
	ModalState
	opens  int
	closes int
}

func (m *recordingModal) Open()  { m.opens++; m.ModalState.Open() }
func (m *recordingModal) Close() { m.closes++; m.ModalState.Close() }

func testScannerConfig() models.ScannerConfig {
	return models.ScannerConfig{FacingMode: "environment", FPS: 10, BoxWidth: 250, BoxHeight: 250, AspectRatio: 1.0}
}

func newTestScanner(camera Camera) (*ScannerService, *recordingModal, *NotificationQueue) {
	modal := &recordingModal{}
	queue := NewNotificationQueue()
	return NewScannerService(camera, modal, queue, testScannerConfig(), nil), modal, queue
}

func TestScannerSingleShot(t *testing.T) {
	camera := &fakeCamera{}
	scanner, modal, _ := newTestScanner(camera)

	var got []string
	require.NoError(t, scanner.Start(context.Background(), func(text string) {
		// The scan is over by the time the callback runs
		assert.Equal(t, models.ScannerIdle, scanner.State())
		assert.False(t, modal.IsOpen())
		got = append(got, text)
	}))
	assert.Equal(t, models.ScannerScanning, scanner.State())
	assert.True(t, modal.IsOpen())
	assert.Equal(t, testScannerConfig(), camera.cfg)

	camera.emit("123456")
	camera.emit("123456")
	camera.emit("654321")

	assert.Equal(t, []string{"123456"}, got)
	assert.Equal(t, models.ScannerIdle, scanner.State())
	assert.False(t, modal.IsOpen())
	_, stops := camera.counts()
	assert.Equal(t, 1, stops)
}

func TestScannerStopBeforeDecode(t *testing.T) {
	camera := &fakeCamera{}
	scanner, modal, _ := newTestScanner(camera)

	calls := 0
	require.NoError(t, scanner.Start(context.Background(), func(string) { calls++ }))

	scanner.Stop(context.Background())
	camera.emit("123456")

	assert.Zero(t, calls)
	assert.Equal(t, models.ScannerIdle, scanner.State())
	assert.False(t, modal.IsOpen())
	_, stops := camera.counts()
	assert.Equal(t, 1, stops)
}

func TestScannerStopIsIdempotent(t *testing.T) {
	camera := &fakeCamera{}
	scanner, modal, _ := newTestScanner(camera)

	scanner.Stop(context.Background())
	scanner.Stop(context.Background())

	_, stops := camera.counts()
	assert.Zero(t, stops)
	assert.Equal(t, 2, modal.closes)
	assert.Equal(t, models.ScannerIdle, scanner.State())

	require.NoError(t, scanner.Start(context.Background(), func(string) {}))
	scanner.Stop(context.Background())
	scanner.Stop(context.Background())

	_, stops = camera.counts()
	assert.Equal(t, 1, stops)
}

func TestScannerStopAfterDecodeDoesNotReleaseTwice(t *testing.T) {
	camera := &fakeCamera{}
	scanner, _, _ := newTestScanner(camera)

	calls := 0
	require.NoError(t, scanner.Start(context.Background(), func(string) { calls++ }))
	camera.emit("111")
	scanner.Stop(context.Background())

	assert.Equal(t, 1, calls)
	_, stops := camera.counts()
	assert.Equal(t, 1, stops)
}

func TestScannerStartFailure(t *testing.T) {
	camera := &fakeCamera{startErr: errors.New("NotAllowedError: Permission denied")}
	scanner, modal, queue := newTestScanner(camera)

	calls := 0
	err := scanner.Start(context.Background(), func(string) { calls++ })

	require.Error(t, err)
	assert.Equal(t, []string{CameraUnavailableMessage}, queue.Drain())
	assert.Equal(t, models.ScannerIdle, scanner.State())
	assert.False(t, modal.IsOpen())
	assert.Zero(t, calls)
	_, stops := camera.counts()
	assert.Zero(t, stops, "a camera that never started is not released")

	// The scanner can be started again afterwards
	camera.startErr = nil
	require.NoError(t, scanner.Start(context.Background(), func(string) {}))
	assert.Equal(t, models.ScannerScanning, scanner.State())
}

func TestScannerStartWhileActive(t *testing.T) {
	camera := &fakeCamera{}
	scanner, _, _ := newTestScanner(camera)

	require.NoError(t, scanner.Start(context.Background(), func(string) {}))
	err := scanner.Start(context.Background(), func(string) {})

	assert.ErrorIs(t, err, ErrScannerBusy)
	starts, _ := camera.counts()
	assert.Equal(t, 1, starts)
}

func TestScannerDecodeFailuresAreIgnored(t *testing.T) {
	camera := &fakeCamera{}
	scanner, modal, queue := newTestScanner(camera)

	require.NoError(t, scanner.Start(context.Background(), func(string) {}))
	for i := 0; i < 5; i++ {
		camera.fail(errors.New("No MultiFormat Readers were able to detect the code"))
	}

	assert.Equal(t, models.ScannerScanning, scanner.State())
	assert.True(t, modal.IsOpen())
	assert.Zero(t, queue.Pending())
}

func TestScannerStopWhileStarting(t *testing.T) {
	camera := &fakeCamera{}
	scanner, modal, _ := newTestScanner(camera)
	camera.duringStart = func() {
		assert.Equal(t, models.ScannerStarting, scanner.State())
		scanner.Stop(context.Background())
	}

	calls := 0
	require.NoError(t, scanner.Start(context.Background(), func(string) { calls++ }))

	assert.Zero(t, calls)
	assert.Equal(t, models.ScannerIdle, scanner.State())
	assert.False(t, modal.IsOpen())
	_, stops := camera.counts()
	assert.Equal(t, 1, stops, "camera acquired during a cancelled start is released once")
}

func TestScannerStopWhileStartingThenCameraFails(t *testing.T) {
	camera := &fakeCamera{startErr: errors.New("NotReadableError: device in use")}
	scanner, modal, queue := newTestScanner(camera)
	camera.duringStart = func() { scanner.Stop(context.Background()) }

	err := scanner.Start(context.Background(), func(string) {})

	require.Error(t, err)
	assert.Zero(t, queue.Pending(), "a cancelled scan fails silently")
	assert.Equal(t, models.ScannerIdle, scanner.State())
	assert.False(t, modal.IsOpen())
	_, stops := camera.counts()
	assert.Zero(t, stops)
}

func TestScannerStopWaitsForClaimedCallback(t *testing.T) {
	camera := &fakeCamera{}
	scanner, modal, _ := newTestScanner(camera)

	var callbackDone atomic.Bool
	var callbackDoneAtStop atomic.Bool
	stopped := make(chan struct{})
	camera.duringStop = func() {
		// Stop lands while the decode is releasing the camera
		go func() {
			scanner.Stop(context.Background())
			callbackDoneAtStop.Store(callbackDone.Load())
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(50 * time.Millisecond):
		}
	}

	require.NoError(t, scanner.Start(context.Background(), func(string) { callbackDone.Store(true) }))
	camera.emit("123456")
	<-stopped

	assert.True(t, callbackDoneAtStop.Load(), "Stop returned before the callback ran")
	assert.False(t, modal.IsOpen())
	_, stops := camera.counts()
	assert.Equal(t, 1, stops)
}

func TestScannerDecodeWhileStarting(t *testing.T) {
	camera := &fakeCamera{}
	scanner, _, _ := newTestScanner(camera)
	camera.duringStart = func() { camera.emit("777") }

	var got []string
	require.NoError(t, scanner.Start(context.Background(), func(text string) { got = append(got, text) }))

	assert.Equal(t, []string{"777"}, got)
	assert.Equal(t, models.ScannerIdle, scanner.State())
	_, stops := camera.counts()
	assert.Equal(t, 1, stops)
}

func TestScannerCameraFailedAfterStart(t *testing.T) {
	camera := &fakeCamera{}
	scanner, modal, queue := newTestScanner(camera)

	calls := 0
	require.NoError(t, scanner.Start(context.Background(), func(string) { calls++ }))
	scanner.CameraFailed(context.Background(), errors.New("track ended"))
	camera.emit("111")

	assert.Equal(t, []string{CameraUnavailableMessage}, queue.Drain())
	assert.Equal(t, models.ScannerIdle, scanner.State())
	assert.False(t, modal.IsOpen())
	assert.Zero(t, calls)

	// Ignored when nothing is running
	scanner.CameraFailed(context.Background(), errors.New("late"))
	assert.Zero(t, queue.Pending())
}

func TestScannerWithRemoteCamera(t *testing.T) {
	camera := NewRemoteCamera(true)
	scanner, _, _ := newTestScanner(camera)

	var got []string
	require.NoError(t, scanner.Start(context.Background(), func(text string) { got = append(got, text) }))
	assert.True(t, camera.Armed())

	assert.True(t, camera.Deliver("8991234567890"))
	assert.False(t, camera.Deliver("8991234567890"))

	assert.Equal(t, []string{"8991234567890"}, got)
	assert.False(t, camera.Armed())
}

func TestRemoteCameraDisabled(t *testing.T) {
	camera := NewRemoteCamera(false)
	scanner, _, queue := newTestScanner(camera)

	err := scanner.Start(context.Background(), func(string) {})

	assert.ErrorIs(t, err, ErrCameraUnavailable)
	assert.Equal(t, []string{CameraUnavailableMessage}, queue.Drain())
	assert.False(t, camera.Deliver("123"))
}
