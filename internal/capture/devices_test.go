package capture

import "testing"

func TestPreferredIndex(t *testing.T) {
	tests := []struct {
		name    string
		devices []Device
		want    int
	}{
		{
			name: "rear label wins",
			devices: []Device{
				{ID: "/dev/video0", Label: "Integrated Webcam"},
				{ID: "/dev/video1", Label: "USB Rear Camera"},
				{ID: "/dev/video2", Label: "Capture Card"},
			},
			want: 1,
		},
		{
			name: "environment label wins",
			devices: []Device{
				{ID: "/dev/video0", Label: "environment facing"},
				{ID: "/dev/video1", Label: "front"},
			},
			want: 0,
		},
		{
			name: "back matched case-insensitively",
			devices: []Device{
				{ID: "/dev/video0", Label: "Front"},
				{ID: "/dev/video1", Label: "BACK Camera"},
			},
			want: 1,
		},
		{
			name: "indexed label beats later front camera",
			devices: []Device{
				{ID: "/dev/video0", Label: "Camera 0"},
				{ID: "/dev/video1", Label: "Front Webcam"},
			},
			want: 0,
		},
		{
			name: "no hint falls back to last device",
			devices: []Device{
				{ID: "/dev/video0", Label: "Webcam A"},
				{ID: "/dev/video1", Label: "Webcam B"},
				{ID: "/dev/video2", Label: "Webcam C"},
			},
			want: 2,
		},
		{
			name: "single device",
			devices: []Device{
				{ID: "/dev/video0", Label: "Webcam"},
			},
			want: 0,
		},
		{
			name:    "empty list",
			devices: nil,
			want:    -1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PreferredIndex(tc.devices); got != tc.want {
				t.Fatalf("PreferredIndex = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIndexOfDevice(t *testing.T) {
	devices := []Device{
		{ID: "/dev/video0"},
		{ID: "/dev/video2"},
	}
	if got := indexOfDevice(devices, "/dev/video2"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := indexOfDevice(devices, "/dev/video9"); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}
