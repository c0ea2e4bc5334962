package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// V4LDeviceAPI enumerates Video4Linux devices under /dev/video* and opens
// them directly. Opening with O_NONBLOCK serves as both the permission probe
// and the busy check: the kernel reports EACCES, EBUSY, or ENOENT without
// blocking on a device another process holds.
type V4LDeviceAPI struct {
	// DevDir and SysDir exist so tests can point the API at a fixture tree.
	DevDir string
	SysDir string
}

// NewV4LDeviceAPI returns a device API over the standard device tree.
func NewV4LDeviceAPI() *V4LDeviceAPI {
	return &V4LDeviceAPI{DevDir: "/dev", SysDir: "/sys/class/video4linux"}
}

// ListDevices scans DevDir for video nodes and resolves their human-readable
// labels from sysfs. Devices are returned in node-name order.
func (a *V4LDeviceAPI) ListDevices(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(a.DevDir, "video*"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", a.DevDir, err)
	}
	sort.Strings(matches)

	devices := make([]Device, 0, len(matches))
	for _, path := range matches {
		devices = append(devices, Device{
			ID:    path,
			Label: a.label(filepath.Base(path)),
		})
	}
	return devices, nil
}

func (a *V4LDeviceAPI) label(node string) string {
	raw, err := os.ReadFile(filepath.Join(a.SysDir, node, "name"))
	if err != nil {
		return node
	}
	label := strings.TrimSpace(string(raw))
	if label == "" {
		return node
	}
	return label
}

// RequestStream opens a device node. An empty deviceID probes the first
// available device, which is how the session checks permission before a
// device has been selected.
func (a *V4LDeviceAPI) RequestStream(ctx context.Context, deviceID string, constraints StreamConstraints) (Stream, error) {
	if deviceID == "" {
		devices, err := a.ListDevices(ctx)
		if err != nil {
			return nil, err
		}
		if len(devices) == 0 {
			return nil, newError(FailureNoDevice, "", ErrNoDevices)
		}
		deviceID = devices[0].ID
	}

	fd, err := unix.Open(deviceID, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, newError(classifyErrno(err), deviceID, fmt.Errorf("open %s: %w", deviceID, err))
	}
	return &v4lStream{device: deviceID, fd: fd}, nil
}

type v4lStream struct {
	device string
	once   sync.Once
	fd     int
}

func (s *v4lStream) Device() string { return s.device }

func (s *v4lStream) Release() {
	s.once.Do(func() {
		_ = unix.Close(s.fd)
	})
}
