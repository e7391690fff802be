// Package artifacts captures failure evidence: screenshots named after
// the failing test, and an optional perceptual comparison against
// baseline images for visual regression checks.
//
// Capture never fails a test run. Outcomes are explicit values so the
// caller can tell "capture failed, continue" apart from a real test
// failure without a catch-all error path.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const timestampLayout = "20060102_150405"

// Outcome is the explicit result of one capture attempt. Err being set
// means the artifact is missing, not that the test failed.
type Outcome struct {
	Path string
	Err  error
}

// OK reports whether the artifact was written.
func (o Outcome) OK() bool { return o.Err == nil }

// Capturer writes screenshots for one session into a directory.
type Capturer struct {
	page *rod.Page
	dir  string
	log  *zap.Logger
}

// NewCapturer builds a Capturer writing into dir, creating it as needed.
func NewCapturer(page *rod.Page, dir string, log *zap.Logger) *Capturer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Capturer{page: page, dir: dir, log: log}
}

// CaptureFailure writes the failure screenshot for a test, named
// FAIL_<test>_<timestamp>.png.
func (c *Capturer) CaptureFailure(testName string) Outcome {
	return c.Capture(testName, "FAIL")
}

// Capture writes a full-viewport screenshot named after name, with an
// optional prefix, and a timestamp.
func (c *Capturer) Capture(name, prefix string) Outcome {
	return c.write(c.filename(name, prefix), func() ([]byte, error) {
		return c.page.Screenshot(false, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
	})
}

// CaptureFullPage writes a screenshot of the entire scrollable page.
func (c *Capturer) CaptureFullPage(name string) Outcome {
	return c.write(c.filename(name, "fullpage"), func() ([]byte, error) {
		return c.page.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
	})
}

// CaptureElement writes a screenshot of a single element.
func (c *Capturer) CaptureElement(el *rod.Element, name string) Outcome {
	return c.write(c.filename(name, "element"), func() ([]byte, error) {
		return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	})
}

func (c *Capturer) filename(name, prefix string) string {
	ts := time.Now().Format(timestampLayout)
	if prefix != "" {
		return fmt.Sprintf("%s_%s_%s.png", prefix, name, ts)
	}
	return fmt.Sprintf("%s_%s.png", name, ts)
}

func (c *Capturer) write(filename string, shoot func() ([]byte, error)) Outcome {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		c.log.Error("failed to create screenshot directory", zap.String("dir", c.dir), zap.Error(err))
		return Outcome{Err: err}
	}
	data, err := shoot()
	if err != nil {
		c.log.Error("failed to capture screenshot", zap.String("file", filename), zap.Error(err))
		return Outcome{Err: err}
	}
	path := filepath.Join(c.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		c.log.Error("failed to save screenshot", zap.String("path", path), zap.Error(err))
		return Outcome{Err: err}
	}
	c.log.Info("screenshot saved", zap.String("path", path))
	return Outcome{Path: path}
}

// CleanupOlderThan removes screenshots older than the given age and
// returns how many were deleted.
func (c *Capturer) CleanupOlderThan(age time.Duration) int {
	cutoff := time.Now().Add(-age)
	entries, err := filepath.Glob(filepath.Join(c.dir, "*.png"))
	if err != nil {
		return 0
	}
	removed := 0
	for _, path := range entries {
		info, err := os.Stat(path)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	if removed > 0 {
		c.log.Info("cleaned up old screenshots", zap.Int("count", removed))
	}
	return removed
}
