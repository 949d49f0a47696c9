package alarm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// The audio context is process-global; oto only supports one.
var (
	audioCtx      *oto.Context
	audioCtxOnce  sync.Once
	audioCtxReady bool
)

func initAudioContext(format *wavFormat) {
	audioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			log.Printf("Failed to initialize audio context: %v", err)
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		audioCtx = ctx
		audioCtxReady = true
		log.Println("Audio context initialized")
	})
}

// Player plays a WAV sound, optionally on a loop, with cooperative stop.
type Player struct {
	stopChan chan struct{}
	done     chan struct{}
	player   *oto.Player
	stopped  bool
	mu       sync.Mutex
}

// PlaySound starts playback of the given WAV data in the background. With
// loop set, playback restarts each time the device reports it finished,
// until Stop. Returns nil (logged) when the data is unplayable or the audio
// device never came up.
func PlaySound(wavData []byte, loop bool) *Player {
	format, audioData, err := parseWAV(wavData)
	if err != nil {
		log.Printf("Failed to parse WAV data: %v", err)
		return nil
	}

	initAudioContext(format)
	if !audioCtxReady || audioCtx == nil {
		log.Println("Audio context not ready, skipping playback")
		return nil
	}

	p := &Player{
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.playLoop(audioData, loop)
	return p
}

func (p *Player) playLoop(audioData []byte, loop bool) {
	defer close(p.done)

	for {
		p.player = audioCtx.NewPlayer(bytes.NewReader(audioData))
		p.player.Play()

		for p.player.IsPlaying() {
			select {
			case <-p.stopChan:
				p.player.Pause()
				p.player.Close()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		if err := p.player.Close(); err != nil {
			log.Printf("Failed to close audio player: %v", err)
		}

		if !loop {
			return
		}

		select {
		case <-p.stopChan:
			return
		default:
		}
	}
}

// Stop signals the playback loop to terminate. Safe on nil and safe to call
// more than once.
func (p *Player) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stopped {
		p.stopped = true
		close(p.stopChan)
	}
}

// Done is closed once the playback loop has exited and the device is
// released.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

type wavFormat struct {
	SampleRate int
	Channels   int
}

// wavFmtChunk mirrors the on-disk layout of the canonical "fmt " chunk.
type wavFmtChunk struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// parseWAV extracts the format and the raw sample data from a RIFF/WAVE
// blob. Chunks other than "fmt " and "data" are skipped.
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var format *wavFormat
	rest := data[12:]

	for len(rest) >= 8 {
		chunkID := string(rest[0:4])
		chunkSize := int(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]
		if chunkSize > len(rest) {
			chunkSize = len(rest)
		}

		switch chunkID {
		case "fmt ":
			var fc wavFmtChunk
			if err := binary.Read(bytes.NewReader(rest[:chunkSize]), binary.LittleEndian, &fc); err != nil {
				return nil, nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			format = &wavFormat{
				SampleRate: int(fc.SampleRate),
				Channels:   int(fc.NumChannels),
			}
		case "data":
			if format == nil {
				return nil, nil, fmt.Errorf("data chunk before fmt chunk")
			}
			return format, rest[:chunkSize], nil
		}

		rest = rest[chunkSize:]
	}

	return nil, nil, fmt.Errorf("no data chunk found")
}
