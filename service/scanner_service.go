package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"katalog-produk/metrics"
	"katalog-produk/models"
)

var (
	// ErrScannerBusy is returned by Start while a scan is already running
	ErrScannerBusy = errors.New("scanner already active")
	// ErrCameraUnavailable is returned by a camera that cannot be acquired
	ErrCameraUnavailable = errors.New("camera unavailable")
)

// Camera is the barcode decoding capability.
// onDecode receives each decoded text; onFailure receives per-frame decode failures,
// which are expected continuously while scanning. Stop releases the camera.
type Camera interface {
	Start(ctx context.Context, cfg models.ScannerConfig, onDecode func(text string), onFailure func(err error)) error
	Stop(ctx context.Context) error
}

// Modal is the dialog that hosts the camera view
type Modal interface {
	Open()
	Close()
}

// ModalState is a Modal whose visibility is read back by the page renderer
type ModalState struct {
	open atomic.Bool
}

func (m *ModalState) Open()        { m.open.Store(true) }
func (m *ModalState) Close()       { m.open.Store(false) }
func (m *ModalState) IsOpen() bool { return m.open.Load() }

// ScannerService drives a single-shot scan: open the modal, start the camera,
// hand the first decoded text to the caller, then release everything.
type ScannerService struct {
	camera   Camera
	modal    Modal
	notifier Notifier
	config   models.ScannerConfig
	metrics  *metrics.Metrics

	mu       sync.Mutex
	state    models.ScannerState
	session  uint64 // bumped whenever a scan ends; stale decodes compare against it
	starting bool   // camera.Start in flight
	acquired bool   // camera.Start succeeded and Stop has not been called yet
	callback func(text string)
	settled  chan struct{} // closed once a claimed decode has run its callback
}

// NewScannerService creates an idle ScannerService
func NewScannerService(camera Camera, modal Modal, notifier Notifier, cfg models.ScannerConfig, m *metrics.Metrics) *ScannerService {
	return &ScannerService{
		camera:   camera,
		modal:    modal,
		notifier: notifier,
		config:   cfg,
		metrics:  m,
		state:    models.ScannerIdle,
	}
}

// Start opens the modal and starts the camera. callback runs at most once, with the
// first decoded text, after the camera is released and the modal closed.
// A camera that cannot be acquired is reported to the user and the scanner stops.
func (s *ScannerService) Start(ctx context.Context, callback func(text string)) error {
	s.mu.Lock()
	if s.state != models.ScannerIdle || s.starting {
		s.mu.Unlock()
		return ErrScannerBusy
	}
	s.state = models.ScannerStarting
	s.starting = true
	s.callback = callback
	session := s.session
	s.mu.Unlock()

	s.modal.Open()
	log.Printf("📷 Scanner starting (facing=%s, fps=%d, box=%dx%d)",
		s.config.FacingMode, s.config.FPS, s.config.BoxWidth, s.config.BoxHeight)

	// Decodes may outlive the request that started the scan
	bg := context.WithoutCancel(ctx)
	err := s.camera.Start(ctx, s.config,
		func(text string) { s.handleDecode(bg, session, text) },
		func(error) {},
	)

	s.mu.Lock()
	s.starting = false
	if err != nil {
		cancelled := s.session != session
		s.mu.Unlock()
		if cancelled {
			log.Printf("⚠️  Camera failed after the scan was stopped: %v", err)
			return fmt.Errorf("failed to start camera: %w", err)
		}
		log.Printf("❌ Scanner error: %v", err)
		s.notifier.Notify(CameraUnavailableMessage)
		s.stop(bg, "camera_error")
		return fmt.Errorf("failed to start camera: %w", err)
	}
	if s.session != session {
		// The scan ended (stop or first decode) while the camera was starting
		s.mu.Unlock()
		s.releaseCamera(bg)
		return nil
	}
	s.acquired = true
	s.state = models.ScannerScanning
	s.mu.Unlock()

	log.Printf("📷 Scanner started")
	return nil
}

// handleDecode processes the first decode of a session and drops the rest
func (s *ScannerService) handleDecode(ctx context.Context, session uint64, text string) {
	s.mu.Lock()
	if s.session != session || (s.state != models.ScannerStarting && s.state != models.ScannerScanning) {
		s.mu.Unlock()
		return
	}
	callback := s.callback
	s.callback = nil
	s.session++
	s.state = models.ScannerStopping
	acquired := s.acquired
	s.acquired = false
	settled := make(chan struct{})
	s.settled = settled
	s.mu.Unlock()
	defer close(settled)

	log.Printf("✅ Barcode detected: %s", text)
	if acquired {
		s.releaseCamera(ctx)
	}
	s.modal.Close()
	s.setState(models.ScannerIdle)
	s.metrics.ScannerSession("decoded")

	if callback != nil {
		callback(text)
	}
}

// Stop ends the current scan without invoking the callback. It is idempotent and
// always closes the modal. When a decode has already claimed the callback, Stop
// waits for that callback to return, so no callback runs after Stop returns.
// The callback itself must not call Stop.
func (s *ScannerService) Stop(ctx context.Context) {
	s.stop(ctx, "stopped")
}

func (s *ScannerService) stop(ctx context.Context, outcome string) {
	s.mu.Lock()
	active := s.state == models.ScannerStarting || s.state == models.ScannerScanning
	acquired := s.acquired
	if active {
		s.session++
		s.state = models.ScannerStopping
		s.callback = nil
		s.acquired = false
	}
	settled := s.settled
	s.mu.Unlock()

	if acquired {
		s.releaseCamera(ctx)
	}
	if !active && settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
		}
	}
	s.modal.Close()

	if active {
		s.setState(models.ScannerIdle)
		s.metrics.ScannerSession(outcome)
		log.Printf("🛑 Scanner stopped (%s)", outcome)
	}
}

// CameraFailed handles a camera that failed after Start returned (e.g. permission
// revoked in the browser): the user is told and the scan stops
func (s *ScannerService) CameraFailed(ctx context.Context, err error) {
	if !s.Active() {
		return
	}
	log.Printf("❌ Scanner error: %v", err)
	s.notifier.Notify(CameraUnavailableMessage)
	s.stop(ctx, "camera_error")
}

func (s *ScannerService) releaseCamera(ctx context.Context) {
	if err := s.camera.Stop(ctx); err != nil {
		log.Printf("❌ Error stopping scanner: %v", err)
	}
}

func (s *ScannerService) setState(state models.ScannerState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// State returns the lifecycle state
func (s *ScannerService) State() models.ScannerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether a scan is starting or running
func (s *ScannerService) Active() bool {
	state := s.State()
	return state == models.ScannerStarting || state == models.ScannerScanning
}

// Config returns the capability configuration
func (s *ScannerService) Config() models.ScannerConfig {
	return s.config
}
