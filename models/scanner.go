package models

// ScannerState is the lifecycle state of the barcode scanner
type ScannerState string

const (
	ScannerIdle     ScannerState = "idle"
	ScannerStarting ScannerState = "starting"
	ScannerScanning ScannerState = "scanning"
	ScannerStopping ScannerState = "stopping"
)

// ScannerConfig is the configuration handed to the camera capability
type ScannerConfig struct {
	FacingMode  string  `json:"facingMode" yaml:"facing_mode"`
	FPS         int     `json:"fps" yaml:"fps"`
	BoxWidth    int     `json:"boxWidth" yaml:"box_width"`
	BoxHeight   int     `json:"boxHeight" yaml:"box_height"`
	AspectRatio float64 `json:"aspectRatio" yaml:"aspect_ratio"`
}

// ScannerStatus is what the page script needs to drive the camera
type ScannerStatus struct {
	State     ScannerState  `json:"state"`
	ModalOpen bool          `json:"modalOpen"`
	Config    ScannerConfig `json:"config"`
}

// DecodeRequest represents the body of a decode callback from the page
type DecodeRequest struct {
	Text string `json:"text"`
}

// CameraErrorRequest represents the body of a camera failure report
type CameraErrorRequest struct {
	Message string `json:"message"`
}
