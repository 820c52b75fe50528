// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"spectrum/internal/log"
)

// recorder captures drained sample blocks to a 16-bit mono WAV file.
// The active flag is checked lock-free on the acquisition path; the
// mutex only serializes write against start/stop.
type recorder struct {
	active atomic.Bool

	mu   sync.Mutex
	file *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

func (r *recorder) start(filename string, sampleRate, blockSize int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active.Load() {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	r.file = file
	r.enc = wav.NewEncoder(file, sampleRate, 16, 1, 1)
	r.buf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: 16,
		Data:           make([]int, blockSize),
	}

	r.active.Store(true)
	return nil
}

// write appends one block. The 12-bit readings are recentered around
// zero and shifted up to 16-bit range.
func (r *recorder) write(block []uint16) {
	if !r.active.Load() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enc == nil {
		return
	}

	r.buf.Data = r.buf.Data[:len(block)]
	for i, s := range block {
		r.buf.Data[i] = (int(s) - 2048) << 4
	}
	if err := r.enc.Write(r.buf); err != nil {
		log.Errorf("engine: wav write: %v", err)
	}
}

func (r *recorder) stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active.Load() {
		return nil
	}
	r.active.Store(false)

	if r.enc != nil {
		if err := r.enc.Close(); err != nil {
			return err
		}
		r.enc = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			return err
		}
		r.file = nil
	}
	return nil
}

// StartRecording begins WAV capture of the raw sample stream.
func (e *Engine) StartRecording(filename string) error {
	err := e.recorder.start(filename, e.cfg.Audio.SampleRate, len(e.block))
	if err == nil {
		log.Infof("engine: recording to %s", filename)
	}
	return err
}

// StopRecording finalizes the WAV file. A no-op when not recording.
func (e *Engine) StopRecording() error {
	return e.recorder.stop()
}

// Recording reports whether capture is active.
func (e *Engine) Recording() bool {
	return e.recorder.active.Load()
}

func (e *Engine) toggleRecording() {
	if e.recorder.active.Load() {
		if err := e.StopRecording(); err != nil {
			log.Errorf("engine: stop recording: %v", err)
		} else {
			log.Infof("engine: recording stopped")
		}
		return
	}

	name := e.cfg.Capture.OutputFile
	if name == "" {
		log.Debugf("engine: long press ignored, no capture file configured")
		return
	}
	if err := e.StartRecording(name); err != nil {
		log.Errorf("engine: start recording: %v", err)
	}
}
