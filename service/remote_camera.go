package service

import (
	"context"
	"log"
	"sync"

	"katalog-produk/models"
)

// RemoteCamera is a Camera whose frames are decoded by the browser.
// The page script owns the physical camera while the modal is open and posts each
// decoded text back; RemoteCamera forwards them while it is armed. Frames without a
// code never leave the browser.
type RemoteCamera struct {
	mu       sync.Mutex
	enabled  bool
	armed    bool
	config   models.ScannerConfig
	onDecode func(text string)
}

// NewRemoteCamera creates a RemoteCamera; a disabled camera refuses to start
func NewRemoteCamera(enabled bool) *RemoteCamera {
	return &RemoteCamera{enabled: enabled}
}

// Ensure RemoteCamera implements Camera
var _ Camera = (*RemoteCamera)(nil)

// Start arms the camera with the scan configuration
func (c *RemoteCamera) Start(ctx context.Context, cfg models.ScannerConfig, onDecode func(text string), onFailure func(err error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return ErrCameraUnavailable
	}
	if c.armed {
		return ErrScannerBusy
	}
	c.armed = true
	c.config = cfg
	c.onDecode = onDecode
	return nil
}

// Stop disarms the camera; later deliveries are dropped
func (c *RemoteCamera) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.armed = false
	c.onDecode = nil
	return nil
}

// Deliver forwards a decoded text. Reports whether the camera was armed.
func (c *RemoteCamera) Deliver(text string) bool {
	c.mu.Lock()
	handler := c.onDecode
	c.mu.Unlock()

	if handler == nil {
		log.Printf("⚠️  Dropping decode while camera is not armed")
		return false
	}
	handler(text)
	return true
}

// Armed reports whether the camera is currently started
func (c *RemoteCamera) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}
