// SPDX-License-Identifier: MIT
package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestRecordingStartStop(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, &scriptedTouch{})
	filename := filepath.Join(t.TempDir(), "capture.wav")

	if err := e.StartRecording(filename); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if !e.Recording() {
		t.Error("Recording() = false after start")
	}
	if err := e.StartRecording(filename); err == nil {
		t.Error("second StartRecording should fail")
	}

	if err := e.StopRecording(); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if e.Recording() {
		t.Error("Recording() = true after stop")
	}
	if err := e.StopRecording(); err != nil {
		t.Fatalf("StopRecording twice: %v", err)
	}
}

func TestRecordingWritesRecenteredSamples(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, &scriptedTouch{})
	filename := filepath.Join(t.TempDir(), "capture.wav")

	if err := e.StartRecording(filename); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}

	// Midpoint, full-scale positive, zero.
	block := []uint16{2048, 4095, 0, 2048}
	e.recorder.write(block)

	if err := e.StopRecording(); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}

	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("open capture: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Fatalf("format = %d ch / %d bit, want mono 16-bit", dec.NumChans, dec.BitDepth)
	}
	if int(dec.SampleRate) != cfg.Audio.SampleRate {
		t.Errorf("sample rate = %d, want %d", dec.SampleRate, cfg.Audio.SampleRate)
	}

	want := []int{0, (4095 - 2048) << 4, -2048 << 4, 0}
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(want))
	}
	for i, w := range want {
		if buf.Data[i] != w {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], w)
		}
	}
}

func TestWriteWithoutRecordingIsNoOp(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, &scriptedTouch{})
	// Must not panic with no encoder in place.
	e.recorder.write([]uint16{1, 2, 3})
}
