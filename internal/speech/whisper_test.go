package speech

import (
	"math"
	"testing"
)

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		cfg    WhisperConfig
		wantOK bool
	}{
		{"no recorder", WhisperConfig{ModelPath: "/tmp/m.bin"}, false},
		{"recorder not installed", WhisperConfig{RecorderCommand: []string{"definitely-not-a-real-binary-xyz"}, ModelPath: "/tmp/m.bin"}, false},
		{"no model", WhisperConfig{RecorderCommand: []string{"true"}}, false},
		{"model missing", WhisperConfig{RecorderCommand: []string{"true"}, ModelPath: "/nonexistent/model.bin"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cap := Probe(tt.cfg)
			if cap.OK != tt.wantOK {
				t.Errorf("Probe(%+v).OK = %v, want %v (reason %q)", tt.cfg, cap.OK, tt.wantOK, cap.Reason)
			}
			if !cap.OK && cap.Reason == "" {
				t.Error("unavailable capability must carry a reason")
			}
		})
	}
}

func TestPCM16ToFloat32(t *testing.T) {
	// s16le: 0, max positive, min negative
	raw := []byte{0x00, 0x00, 0xff, 0x7f, 0x00, 0x80}
	got := pcm16ToFloat32(raw)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != 0 {
		t.Errorf("zero sample = %v", got[0])
	}
	if math.Abs(float64(got[1])-32767.0/32768) > 1e-6 {
		t.Errorf("max sample = %v", got[1])
	}
	if got[2] != -1 {
		t.Errorf("min sample = %v", got[2])
	}
}

func TestRMS(t *testing.T) {
	if got := rms(nil); got != 0 {
		t.Errorf("rms(nil) = %v", got)
	}
	if got := rms([]float32{0, 0, 0}); got != 0 {
		t.Errorf("rms(silence) = %v", got)
	}
	got := rms([]float32{0.5, -0.5, 0.5, -0.5})
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("rms = %v, want 0.5", got)
	}
}

func TestMicDenied(t *testing.T) {
	denied := []string{
		"sox FAIL formats: can't open input `default': Permission denied",
		"arecord: main:831: audio open error: Device or resource busy",
		"ALSA lib: cannot open audio device hw:0",
	}
	for _, s := range denied {
		if !micDenied(s) {
			t.Errorf("micDenied(%q) = false", s)
		}
	}
	if micDenied("sox WARN rate: rate clipped") {
		t.Error("warning text misread as permission failure")
	}
}
