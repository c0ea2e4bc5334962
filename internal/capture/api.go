package capture

import "context"

// Device identifies one capture device.
type Device struct {
	ID    string
	Label string
}

// StreamConstraints describe the capture parameters requested from a device.
type StreamConstraints struct {
	SampleRateFPS int
	RegionScale   float64
}

// Stream is an open handle on a capture device. Release must be safe to call
// more than once.
type Stream interface {
	Device() string
	Release()
}

// DeviceAPI abstracts device enumeration and stream acquisition. The V4L
// implementation backs production use; tests supply fakes that record every
// stream handed out.
type DeviceAPI interface {
	ListDevices(ctx context.Context) ([]Device, error)
	RequestStream(ctx context.Context, deviceID string, constraints StreamConstraints) (Stream, error)
}

// DecoderConfig carries the decode parameters a factory applies to a stream.
type DecoderConfig struct {
	SampleRateFPS int
	RegionScale   float64
	Symbologies   []string
}

// Decoder is a running decode pipeline on one stream.
type Decoder interface {
	Stop()
}

// DecoderFactory starts a decoder on an open stream. onDecode is invoked once
// per recognized code; the factory must keep invoking it until Stop.
type DecoderFactory interface {
	Start(ctx context.Context, stream Stream, cfg DecoderConfig, onDecode func(code string)) (Decoder, error)
}
