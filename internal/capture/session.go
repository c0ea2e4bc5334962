package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"shelfscan/internal/config"
	"shelfscan/internal/logging"
)

// Status is the lifecycle state of a capture session.
type Status string

const (
	StatusIdle                 Status = "idle"
	StatusRequestingPermission Status = "requesting-permission"
	StatusEnumerating          Status = "enumerating"
	StatusStarting             Status = "starting"
	StatusActive               Status = "active"
	StatusStopping             Status = "stopping"
	StatusError                Status = "error"
)

// Permission is the session's view of camera access.
type Permission string

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ErrNoDevices is returned when enumeration finds no capture devices.
var ErrNoDevices = errors.New("no capture devices found")

// Session drives one camera through the permission, enumeration, and decode
// lifecycle. All methods are safe for concurrent use.
type Session struct {
	api       DeviceAPI
	decoders  DecoderFactory
	logger    *slog.Logger
	onDecoded func(code string)

	constraints StreamConstraints
	decoderCfg  DecoderConfig
	pinned      string
	settleDelay time.Duration

	mu          sync.Mutex
	status      Status
	permission  Permission
	devices     []Device
	activeIndex int
	stream      Stream
	decoder     Decoder
	decoded     bool
	lastErr     error
}

// NewSession builds a session from scanner configuration. onDecoded receives
// at most one code per active period.
func NewSession(cfg config.Scanner, api DeviceAPI, decoders DecoderFactory, logger *slog.Logger, onDecoded func(code string)) *Session {
	return &Session{
		api:       api,
		decoders:  decoders,
		logger:    logging.NewComponentLogger(logger, "capture"),
		onDecoded: onDecoded,
		constraints: StreamConstraints{
			SampleRateFPS: cfg.SampleRateFPS,
			RegionScale:   cfg.RegionScale,
		},
		decoderCfg: DecoderConfig{
			SampleRateFPS: cfg.SampleRateFPS,
			RegionScale:   cfg.RegionScale,
			Symbologies:   append([]string(nil), cfg.Symbologies...),
		},
		pinned:      cfg.Device,
		settleDelay: time.Duration(cfg.SettleDelayMS) * time.Millisecond,
		status:      StatusIdle,
		permission:  PermissionUnknown,
		activeIndex: -1,
	}
}

// Status reports the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Permission reports the current access state.
func (s *Session) Permission() Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// Devices returns the enumerated device list.
func (s *Session) Devices() []Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Device(nil), s.devices...)
}

// ActiveDevice returns the currently selected device, or a zero Device before
// initialization.
func (s *Session) ActiveDevice() Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeIndex < 0 || s.activeIndex >= len(s.devices) {
		return Device{}
	}
	return s.devices[s.activeIndex]
}

// Err returns the error that moved the session into StatusError, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Initialize probes camera permission and enumerates devices. The probe
// stream is released immediately after the grant; it exists only to trigger
// the permission check before any device is selected.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusIdle && s.status != StatusError {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusRequestingPermission
	s.lastErr = nil
	s.mu.Unlock()

	probe, err := s.api.RequestStream(ctx, "", s.constraints)
	if err != nil {
		kind := Classify(err)
		s.mu.Lock()
		if kind == FailurePermissionDenied {
			s.permission = PermissionDenied
		}
		s.failLocked(newError(kind, "", err))
		s.mu.Unlock()
		return s.Err()
	}
	probe.Release()

	s.mu.Lock()
	s.permission = PermissionGranted
	s.status = StatusEnumerating
	s.mu.Unlock()

	devices, err := s.api.ListDevices(ctx)
	if err != nil {
		s.mu.Lock()
		s.failLocked(newError(Classify(err), "", err))
		s.mu.Unlock()
		return s.Err()
	}
	if len(devices) == 0 {
		s.mu.Lock()
		s.failLocked(newError(FailureNoDevice, "", ErrNoDevices))
		s.mu.Unlock()
		return s.Err()
	}

	s.mu.Lock()
	s.devices = devices
	s.activeIndex = s.chooseIndexLocked()
	selected := devices[s.activeIndex]
	s.status = StatusIdle
	s.mu.Unlock()

	s.logger.Info("capture initialized",
		logging.Int("devices", len(devices)),
		logging.String("selected", selected.ID),
	)
	return nil
}

// ActiveIndex returns the position of the selected device.
func (s *Session) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeIndex
}

func (s *Session) chooseIndexLocked() int {
	if s.pinned != "" {
		if i := indexOfDevice(s.devices, s.pinned); i >= 0 {
			return i
		}
		s.logger.Warn("configured device not present, falling back to enumeration order",
			logging.String("device", s.pinned),
		)
	}
	return PreferredIndex(s.devices)
}

// Start opens a stream on the selected device and begins decoding. The
// session must be initialized and idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusActive || s.status == StatusStarting {
		s.mu.Unlock()
		return nil
	}
	if s.permission != PermissionGranted || s.activeIndex < 0 {
		s.mu.Unlock()
		return errors.New("session not initialized")
	}
	device := s.devices[s.activeIndex]
	s.status = StatusStarting
	s.decoded = false
	s.mu.Unlock()

	stream, err := s.api.RequestStream(ctx, device.ID, s.constraints)
	if err != nil {
		s.mu.Lock()
		s.failLocked(newError(Classify(err), device.ID, err))
		s.mu.Unlock()
		return s.Err()
	}

	decoder, err := s.decoders.Start(ctx, stream, s.decoderCfg, s.handleDecode)
	if err != nil {
		stream.Release()
		s.mu.Lock()
		s.failLocked(newError(Classify(err), device.ID, err))
		s.mu.Unlock()
		return s.Err()
	}

	s.mu.Lock()
	s.stream = stream
	s.decoder = decoder
	s.status = StatusActive
	s.mu.Unlock()

	s.logger.Info("decoding started", logging.String("device", device.ID))
	return nil
}

// handleDecode delivers the first code of the active period and auto-stops.
// Late callbacks from a decoder that has not observed Stop yet are dropped.
func (s *Session) handleDecode(code string) {
	s.mu.Lock()
	if s.status != StatusActive || s.decoded {
		s.mu.Unlock()
		return
	}
	s.decoded = true
	s.status = StatusStopping
	s.releaseLocked()
	s.status = StatusIdle
	s.mu.Unlock()

	s.logger.Info("code decoded", logging.String(logging.FieldScanCode, code))
	if s.onDecoded != nil {
		s.onDecoded(code)
	}
}

// Stop halts decoding and releases the stream. Safe to call in any state.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive && s.status != StatusStarting {
		return
	}
	s.status = StatusStopping
	s.releaseLocked()
	s.status = StatusIdle
}

// SwitchDevice advances to the next enumerated device, wrapping around. When
// the session was active it restarts decoding on the new device after a short
// settle delay; otherwise only the selection changes.
func (s *Session) SwitchDevice(ctx context.Context) error {
	s.mu.Lock()
	if len(s.devices) < 2 {
		s.mu.Unlock()
		return nil
	}
	wasActive := s.status == StatusActive
	if wasActive {
		s.status = StatusStopping
		s.releaseLocked()
		s.status = StatusIdle
	}
	s.activeIndex = (s.activeIndex + 1) % len(s.devices)
	next := s.devices[s.activeIndex]
	s.mu.Unlock()

	s.logger.Info("switched device", logging.String("device", next.ID))

	if !wasActive {
		return nil
	}
	if s.settleDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.settleDelay):
		}
	}
	return s.Start(ctx)
}

// RefreshDevices re-enumerates after a hotplug event. The active selection
// follows the device ID when it survived; otherwise the preference ranking
// picks again. A decode in progress is not interrupted.
func (s *Session) RefreshDevices(ctx context.Context) error {
	s.mu.Lock()
	if s.permission != PermissionGranted {
		s.mu.Unlock()
		return nil
	}
	var activeID string
	if s.activeIndex >= 0 && s.activeIndex < len(s.devices) {
		activeID = s.devices[s.activeIndex].ID
	}
	s.mu.Unlock()

	devices, err := s.api.ListDevices(ctx)
	if err != nil {
		return newError(Classify(err), "", err)
	}

	s.mu.Lock()
	s.devices = devices
	if i := indexOfDevice(devices, activeID); i >= 0 {
		s.activeIndex = i
	} else {
		s.activeIndex = s.chooseIndexLocked()
	}
	s.mu.Unlock()

	s.logger.Info("devices refreshed", logging.Int("devices", len(devices)))
	return nil
}

// Retry clears an error state and reruns initialization.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusActive || s.status == StatusStarting {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusIdle
	s.lastErr = nil
	s.mu.Unlock()
	return s.Initialize(ctx)
}

// Teardown releases everything the session holds and returns it to idle.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
	s.status = StatusIdle
	s.devices = nil
	s.activeIndex = -1
	s.lastErr = nil
}

// releaseLocked is the single release path for decoder and stream. Every
// transition out of the active state must come through here.
func (s *Session) releaseLocked() {
	if s.decoder != nil {
		s.decoder.Stop()
		s.decoder = nil
	}
	if s.stream != nil {
		s.stream.Release()
		s.stream = nil
	}
}

func (s *Session) failLocked(err error) {
	s.releaseLocked()
	s.status = StatusError
	s.lastErr = err
	s.logger.Error("capture failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, Remediation(Classify(err))),
	)
}
