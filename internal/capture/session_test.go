package capture

import (
	"context"
	"errors"
	"sync"
	"testing"

	"shelfscan/internal/config"
)

type fakeStream struct {
	device string

	mu       sync.Mutex
	released int
}

func (s *fakeStream) Device() string { return s.device }

func (s *fakeStream) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
}

func (s *fakeStream) releaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

type fakeDeviceAPI struct {
	devices   []Device
	streamErr error
	listErr   error

	mu      sync.Mutex
	streams []*fakeStream
}

func (a *fakeDeviceAPI) ListDevices(ctx context.Context) ([]Device, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	return a.devices, nil
}

func (a *fakeDeviceAPI) RequestStream(ctx context.Context, deviceID string, constraints StreamConstraints) (Stream, error) {
	if a.streamErr != nil {
		return nil, a.streamErr
	}
	stream := &fakeStream{device: deviceID}
	a.mu.Lock()
	a.streams = append(a.streams, stream)
	a.mu.Unlock()
	return stream, nil
}

// unreleased counts streams handed out that were never released. Any session
// path that exits the active state must leave this at zero.
func (a *fakeDeviceAPI) unreleased() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	count := 0
	for _, stream := range a.streams {
		if stream.releaseCount() == 0 {
			count++
		}
	}
	return count
}

type fakeDecoder struct {
	mu      sync.Mutex
	stopped int
}

func (d *fakeDecoder) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped++
}

type fakeDecoderFactory struct {
	startErr error

	mu       sync.Mutex
	decoders []*fakeDecoder
	onDecode func(code string)
}

func (f *fakeDecoderFactory) Start(ctx context.Context, stream Stream, cfg DecoderConfig, onDecode func(code string)) (Decoder, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	decoder := &fakeDecoder{}
	f.mu.Lock()
	f.decoders = append(f.decoders, decoder)
	f.onDecode = onDecode
	f.mu.Unlock()
	return decoder, nil
}

func (f *fakeDecoderFactory) emit(code string) {
	f.mu.Lock()
	fn := f.onDecode
	f.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

func testScannerConfig() config.Scanner {
	return config.Scanner{
		SampleRateFPS: 10,
		RegionScale:   0.7,
		Symbologies:   []string{"ean13", "upca"},
	}
}

func twoCameras() []Device {
	return []Device{
		{ID: "/dev/video0", Label: "Front Camera"},
		{ID: "/dev/video1", Label: "Back Camera"},
	}
}

func TestInitializeReleasesProbeStream(t *testing.T) {
	api := &fakeDeviceAPI{devices: twoCameras()}
	session := NewSession(testScannerConfig(), api, &fakeDecoderFactory{}, nil, nil)

	if err := session.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if session.Permission() != PermissionGranted {
		t.Fatalf("expected granted permission, got %s", session.Permission())
	}
	if session.Status() != StatusIdle {
		t.Fatalf("expected idle after init, got %s", session.Status())
	}
	if api.unreleased() != 0 {
		t.Fatalf("probe stream leaked: %d unreleased", api.unreleased())
	}
	if session.ActiveDevice().ID != "/dev/video1" {
		t.Fatalf("expected back camera selected, got %s", session.ActiveDevice().ID)
	}
}

func TestInitializePermissionDenied(t *testing.T) {
	api := &fakeDeviceAPI{streamErr: &Error{Kind: FailurePermissionDenied, Err: errors.New("open /dev/video0: permission denied")}}
	session := NewSession(testScannerConfig(), api, &fakeDecoderFactory{}, nil, nil)

	err := session.Initialize(context.Background())
	if err == nil {
		t.Fatal("expected permission error")
	}
	if session.Permission() != PermissionDenied {
		t.Fatalf("expected denied permission, got %s", session.Permission())
	}
	if session.Status() != StatusError {
		t.Fatalf("expected error status, got %s", session.Status())
	}
	if Classify(err) != FailurePermissionDenied {
		t.Fatalf("expected permission classification, got %s", Classify(err))
	}
}

func TestInitializeNoDevices(t *testing.T) {
	// The probe stream succeeds but enumeration turns up empty.
	api := &fakeDeviceAPI{}
	session := NewSession(testScannerConfig(), api, &fakeDecoderFactory{}, nil, nil)

	err := session.Initialize(context.Background())
	if !errors.Is(err, ErrNoDevices) {
		t.Fatalf("expected ErrNoDevices, got %v", err)
	}
	if Classify(err) != FailureNoDevice {
		t.Fatalf("expected no-device classification, got %s", Classify(err))
	}
}

func TestDecodeDeliversOnceAndAutoStops(t *testing.T) {
	api := &fakeDeviceAPI{devices: twoCameras()}
	factory := &fakeDecoderFactory{}

	var decoded []string
	session := NewSession(testScannerConfig(), api, factory, nil, func(code string) {
		decoded = append(decoded, code)
	})

	ctx := context.Background()
	if err := session.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if session.Status() != StatusActive {
		t.Fatalf("expected active, got %s", session.Status())
	}

	factory.emit("024543273738")
	factory.emit("024543273738")
	factory.emit("191329060858")

	if len(decoded) != 1 || decoded[0] != "024543273738" {
		t.Fatalf("expected exactly one delivered code, got %v", decoded)
	}
	if session.Status() != StatusIdle {
		t.Fatalf("expected auto-stop to idle, got %s", session.Status())
	}
	if api.unreleased() != 0 {
		t.Fatalf("stream leaked after decode: %d unreleased", api.unreleased())
	}
	if factory.decoders[0].stopped == 0 {
		t.Fatal("decoder not stopped after decode")
	}
}

func TestStopReleasesEverything(t *testing.T) {
	api := &fakeDeviceAPI{devices: twoCameras()}
	factory := &fakeDecoderFactory{}
	session := NewSession(testScannerConfig(), api, factory, nil, nil)

	ctx := context.Background()
	if err := session.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	session.Stop()
	session.Stop() // second stop is a no-op

	if session.Status() != StatusIdle {
		t.Fatalf("expected idle, got %s", session.Status())
	}
	if api.unreleased() != 0 {
		t.Fatalf("stream leaked after stop: %d unreleased", api.unreleased())
	}
}

func TestDecoderStartFailureReleasesStream(t *testing.T) {
	api := &fakeDeviceAPI{devices: twoCameras()}
	factory := &fakeDecoderFactory{startErr: errors.New("zbarcam missing")}
	session := NewSession(testScannerConfig(), api, factory, nil, nil)

	ctx := context.Background()
	if err := session.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := session.Start(ctx); err == nil {
		t.Fatal("expected start failure")
	}
	if session.Status() != StatusError {
		t.Fatalf("expected error status, got %s", session.Status())
	}
	if api.unreleased() != 0 {
		t.Fatalf("stream leaked after failed start: %d unreleased", api.unreleased())
	}
}

func TestSwitchDeviceCyclesAndRestarts(t *testing.T) {
	api := &fakeDeviceAPI{devices: twoCameras()}
	factory := &fakeDecoderFactory{}
	session := NewSession(testScannerConfig(), api, factory, nil, nil)

	ctx := context.Background()
	if err := session.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	// Back camera selected first; switching wraps to the front camera.
	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := session.SwitchDevice(ctx); err != nil {
		t.Fatalf("SwitchDevice failed: %v", err)
	}
	if session.ActiveDevice().ID != "/dev/video0" {
		t.Fatalf("expected wrap to /dev/video0, got %s", session.ActiveDevice().ID)
	}
	if session.Status() != StatusActive {
		t.Fatalf("expected restart after switch, got %s", session.Status())
	}
	// Only the new stream may remain open.
	if api.unreleased() != 1 {
		t.Fatalf("expected exactly one live stream, got %d", api.unreleased())
	}

	session.Teardown()
	if api.unreleased() != 0 {
		t.Fatalf("stream leaked after teardown: %d unreleased", api.unreleased())
	}
}

func TestSwitchDeviceWhileIdleOnlyChangesSelection(t *testing.T) {
	api := &fakeDeviceAPI{devices: twoCameras()}
	factory := &fakeDecoderFactory{}
	session := NewSession(testScannerConfig(), api, factory, nil, nil)

	ctx := context.Background()
	if err := session.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := session.SwitchDevice(ctx); err != nil {
		t.Fatalf("SwitchDevice failed: %v", err)
	}
	if session.Status() != StatusIdle {
		t.Fatalf("idle switch must not start decoding, got %s", session.Status())
	}
	if len(factory.decoders) != 0 {
		t.Fatal("no decoder should have started")
	}
}

func TestRetryRecoversFromError(t *testing.T) {
	api := &fakeDeviceAPI{streamErr: &Error{Kind: FailureDeviceBusy, Err: errors.New("device busy")}}
	session := NewSession(testScannerConfig(), api, &fakeDecoderFactory{}, nil, nil)

	ctx := context.Background()
	if err := session.Initialize(ctx); err == nil {
		t.Fatal("expected busy failure")
	}

	api.streamErr = nil
	api.devices = twoCameras()
	if err := session.Retry(ctx); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if session.Status() != StatusIdle || session.Permission() != PermissionGranted {
		t.Fatalf("expected recovered session, got %s/%s", session.Status(), session.Permission())
	}
	if session.Err() != nil {
		t.Fatalf("expected cleared error, got %v", session.Err())
	}
}

func TestRefreshDevicesFollowsActiveID(t *testing.T) {
	api := &fakeDeviceAPI{devices: twoCameras()}
	session := NewSession(testScannerConfig(), api, &fakeDecoderFactory{}, nil, nil)

	ctx := context.Background()
	if err := session.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// A new camera appears ahead of the active one in enumeration order.
	api.devices = []Device{
		{ID: "/dev/video2", Label: "New Webcam"},
		{ID: "/dev/video0", Label: "Front Camera"},
		{ID: "/dev/video1", Label: "Back Camera"},
	}
	if err := session.RefreshDevices(ctx); err != nil {
		t.Fatalf("RefreshDevices failed: %v", err)
	}
	if session.ActiveDevice().ID != "/dev/video1" {
		t.Fatalf("active device must survive refresh, got %s", session.ActiveDevice().ID)
	}
	if len(session.Devices()) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(session.Devices()))
	}

	// The active device vanishing re-runs the preference ranking.
	api.devices = []Device{{ID: "/dev/video2", Label: "New Webcam"}}
	if err := session.RefreshDevices(ctx); err != nil {
		t.Fatalf("RefreshDevices failed: %v", err)
	}
	if session.ActiveDevice().ID != "/dev/video2" {
		t.Fatalf("expected fallback selection, got %s", session.ActiveDevice().ID)
	}
}

func TestPinnedDeviceWins(t *testing.T) {
	cfg := testScannerConfig()
	cfg.Device = "/dev/video0"
	api := &fakeDeviceAPI{devices: twoCameras()}
	session := NewSession(cfg, api, &fakeDecoderFactory{}, nil, nil)

	if err := session.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if session.ActiveDevice().ID != "/dev/video0" {
		t.Fatalf("expected pinned device, got %s", session.ActiveDevice().ID)
	}
}
