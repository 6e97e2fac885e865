//go:build linux

package vision

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blackjack/webcam"
	"go.uber.org/zap"
)

// fourcc for packed YUYV 4:2:2, the format nearly every UVC webcam speaks.
const pixFmtYUYV = webcam.PixelFormat(0x56595559)

// CameraSource is the real FrameSource: a V4L2 device streaming YUYV frames
// converted to RGBA on read.
type CameraSource struct {
	device string
	log    *zap.Logger

	mu   sync.Mutex
	cam  *webcam.Webcam
	w, h int
	rgba []uint8
}

func NewCameraSource(device string, log *zap.Logger) *CameraSource {
	if device == "" {
		device = "/dev/video0"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CameraSource{device: device, log: log}
}

func (s *CameraSource) Start(ctx context.Context) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cam != nil {
		return s.w, s.h, nil
	}

	cam, err := webcam.Open(s.device)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return 0, 0, fmt.Errorf("%w: %s", ErrCameraNotFound, s.device)
		case os.IsPermission(err):
			return 0, 0, fmt.Errorf("%w: %s", ErrCameraUnavailable, s.device)
		default:
			return 0, 0, fmt.Errorf("open %s: %w", s.device, err)
		}
	}

	if _, ok := cam.GetSupportedFormats()[pixFmtYUYV]; !ok {
		cam.Close()
		return 0, 0, fmt.Errorf("%w: %s has no YUYV format", ErrCameraUnavailable, s.device)
	}
	_, w, h, err := cam.SetImageFormat(pixFmtYUYV, CaptureWidth, CaptureHeight)
	if err != nil {
		cam.Close()
		return 0, 0, fmt.Errorf("set format: %w", err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return 0, 0, fmt.Errorf("start streaming: %w", err)
	}

	// Wait for the first decodable frame so Start only succeeds on a stream
	// that actually delivers.
	for {
		select {
		case <-ctx.Done():
			cam.StopStreaming()
			cam.Close()
			return 0, 0, fmt.Errorf("%w: %v", ErrCameraTimeout, ctx.Err())
		default:
		}
		err := cam.WaitForFrame(1)
		if _, timeout := err.(*webcam.Timeout); timeout {
			continue
		}
		if err != nil {
			cam.StopStreaming()
			cam.Close()
			return 0, 0, fmt.Errorf("wait for first frame: %w", err)
		}
		if buf, err := cam.ReadFrame(); err == nil && len(buf) > 0 {
			break
		}
	}

	s.cam = cam
	s.w = int(w)
	s.h = int(h)
	s.rgba = make([]uint8, s.w*s.h*4)
	s.log.Info("camera streaming",
		zap.String("device", s.device),
		zap.Int("width", s.w),
		zap.Int("height", s.h),
	)
	return s.w, s.h, nil
}

func (s *CameraSource) Latest() (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cam == nil {
		return Frame{}, fmt.Errorf("camera stopped")
	}
	if err := s.cam.WaitForFrame(1); err != nil {
		return Frame{}, err // includes *webcam.Timeout; caller skips the tick
	}
	buf, err := s.cam.ReadFrame()
	if err != nil {
		return Frame{}, err
	}
	if len(buf) < s.w*s.h*2 {
		return Frame{}, fmt.Errorf("short frame: %d bytes", len(buf))
	}
	yuyvToRGBA(buf, s.rgba, s.w, s.h)
	return Frame{Pix: s.rgba, W: s.w, H: s.h}, nil
}

func (s *CameraSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cam == nil {
		return
	}
	s.cam.StopStreaming()
	s.cam.Close()
	s.cam = nil
	s.rgba = nil
}

// yuyvToRGBA expands packed YUYV (two pixels per four bytes) to RGBA using
// the BT.601 integer approximation.
func yuyvToRGBA(src, dst []uint8, w, h int) {
	for i, o := 0, 0; i+3 < len(src) && o+7 < len(dst); i, o = i+4, o+8 {
		y0 := int(src[i])
		u := int(src[i+1]) - 128
		y1 := int(src[i+2])
		v := int(src[i+3]) - 128

		r := (351 * v) >> 8
		g := (-(86*u + 179*v)) >> 8
		b := (444 * u) >> 8

		dst[o] = clampU8(y0 + r)
		dst[o+1] = clampU8(y0 + g)
		dst[o+2] = clampU8(y0 + b)
		dst[o+3] = 255
		dst[o+4] = clampU8(y1 + r)
		dst[o+5] = clampU8(y1 + g)
		dst[o+6] = clampU8(y1 + b)
		dst[o+7] = 255
	}
}

func clampU8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
