//go:build !linux

package vision

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CameraSource is a stub on non-linux platforms; only V4L2 capture is
// implemented. Start always fails with ErrCameraNotFound.
type CameraSource struct{}

func NewCameraSource(device string, log *zap.Logger) *CameraSource {
	return &CameraSource{}
}

func (s *CameraSource) Start(ctx context.Context) (int, int, error) {
	return 0, 0, fmt.Errorf("%w: camera capture requires linux", ErrCameraNotFound)
}

func (s *CameraSource) Latest() (Frame, error) {
	return Frame{}, fmt.Errorf("camera stopped")
}

func (s *CameraSource) Stop() {}
