// Package capture manages the lifecycle of a barcode capture session over a
// local video device.
//
// A Session walks an explicit state machine: permission probing, device
// enumeration, decoder start, active decoding, and stop. Every exit from the
// active state runs through a single guarded release path so that streams and
// decoders are never leaked, whatever the trigger (successful decode, user
// stop, device switch, error, or teardown). Exactly one decode callback fires
// per active period; the session auto-stops after delivering it.
//
// The package talks to hardware through two narrow interfaces, DeviceAPI and
// DecoderFactory. The production implementations enumerate V4L devices under
// /dev/video* and decode frames with an external zbarcam process; tests supply
// recording fakes.
package capture
