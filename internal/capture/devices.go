package capture

import "strings"

// preferredLabelHints mark labels that usually denote the camera pointed away
// from the user, which is the one people scan barcodes with. "0" catches
// devices that only expose an index, like "Camera 0".
var preferredLabelHints = []string{"back", "rear", "environment", "0"}

// PreferredIndex picks the starting device for a session: the first device
// whose label suggests a rear-facing camera, otherwise the last enumerated
// device. Returns -1 for an empty list.
func PreferredIndex(devices []Device) int {
	if len(devices) == 0 {
		return -1
	}
	for i, device := range devices {
		label := strings.ToLower(device.Label)
		for _, hint := range preferredLabelHints {
			if strings.Contains(label, hint) {
				return i
			}
		}
	}
	return len(devices) - 1
}

// indexOfDevice returns the position of id in devices, or -1.
func indexOfDevice(devices []Device, id string) int {
	for i, device := range devices {
		if device.ID == id {
			return i
		}
	}
	return -1
}
