package audiodev

import (
	"errors"
	"testing"
)

func TestSelect(t *testing.T) {
	host := &MockHost{
		DeviceList: []Device{
			{Index: 0, Name: "Built-in Mic", MaxInputChannels: 2, DefaultSampleRate: 44100},
			{Index: 1, Name: "DJI MIC 2", MaxInputChannels: 1, DefaultSampleRate: 48000},
			{Index: 2, Name: "Built-in Output", MaxInputChannels: 0, DefaultSampleRate: 48000},
		},
	}

	t.Run("preferred substring wins case-insensitively", func(t *testing.T) {
		dev, err := Select(host, "dji mic")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dev.Name != "DJI MIC 2" {
			t.Errorf("expected DJI MIC 2, got %q", dev.Name)
		}
	})

	t.Run("falls back to first input device", func(t *testing.T) {
		dev, err := Select(host, "studio condenser")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dev.Name != "Built-in Mic" {
			t.Errorf("expected Built-in Mic, got %q", dev.Name)
		}
	})

	t.Run("output-only devices never match", func(t *testing.T) {
		dev, err := Select(host, "built-in output")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dev.Name != "Built-in Mic" {
			t.Errorf("expected Built-in Mic, got %q", dev.Name)
		}
	})

	t.Run("no input device", func(t *testing.T) {
		empty := &MockHost{DeviceList: []Device{
			{Index: 0, Name: "Speakers", MaxInputChannels: 0},
		}}
		_, err := Select(empty, "")
		if !errors.Is(err, ErrNoDevice) {
			t.Errorf("expected ErrNoDevice, got %v", err)
		}
	})
}

func TestProbeRates(t *testing.T) {
	t.Run("returns supported subset", func(t *testing.T) {
		host := &MockHost{
			SupportedRates: map[int][]int{0: {16000, 44100, 48000}},
		}
		dev := Device{Index: 0, DefaultSampleRate: 44100}
		rates := ProbeRates(host, dev, 1)
		want := []int{16000, 44100, 48000}
		if len(rates) != len(want) {
			t.Fatalf("expected %v, got %v", want, rates)
		}
		for i := range want {
			if rates[i] != want[i] {
				t.Errorf("expected %v, got %v", want, rates)
			}
		}
	})

	t.Run("empty probe falls back to device default", func(t *testing.T) {
		host := &MockHost{
			SupportedRates: map[int][]int{0: {}},
		}
		dev := Device{Index: 0, DefaultSampleRate: 44100}
		rates := ProbeRates(host, dev, 1)
		if len(rates) != 1 || rates[0] != 44100 {
			t.Errorf("expected [44100], got %v", rates)
		}
	})
}

func TestBestRate(t *testing.T) {
	cases := []struct {
		name      string
		supported []int
		preferred int
		want      int
	}{
		{"closest below preferred", []int{8000, 16000, 44100}, 48000, 44100},
		{"exact match", []int{8000, 16000, 48000}, 16000, 16000},
		{"single option", []int{22050}, 48000, 22050},
		{"empty falls through", nil, 48000, 48000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BestRate(tc.supported, tc.preferred); got != tc.want {
				t.Errorf("BestRate(%v, %d) = %d, want %d", tc.supported, tc.preferred, got, tc.want)
			}
		})
	}
}

func TestMaxRate(t *testing.T) {
	if got := MaxRate([]int{8000, 48000, 16000}, 16000); got != 48000 {
		t.Errorf("expected 48000, got %d", got)
	}
	if got := MaxRate(nil, 16000); got != 16000 {
		t.Errorf("expected preferred fallback 16000, got %d", got)
	}
}

func TestFrameDuration(t *testing.T) {
	f := SilenceFrame(16000, 0)
	if f.Duration() != FrameDuration {
		t.Errorf("expected 10ms frame, got %v", f.Duration())
	}
	if len(f.Samples) != 160 {
		t.Errorf("expected 160 samples at 16kHz, got %d", len(f.Samples))
	}
}

func TestFrameBytes(t *testing.T) {
	f := Frame{Samples: []int16{0x1234, -2}, SampleRate: 16000, Channels: 1}
	b := f.Bytes()
	if len(b) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(b))
	}
	if b[0] != 0x34 || b[1] != 0x12 {
		t.Errorf("expected little-endian encoding, got % x", b[:2])
	}
}
