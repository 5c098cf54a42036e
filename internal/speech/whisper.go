package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"
)

// Endpointing constants, tuned for short marketplace queries at 16kHz.
const (
	chunkSamples    = 1600 // 100ms of audio per read
	silenceRMS      = 0.015
	trailingSilence = 1200 * time.Millisecond
	maxUtterance    = 15 * time.Second
)

// ErrMicPermission is the reason on the error event when the recorder
// cannot open the audio device.
var ErrMicPermission = errors.New("microphone permission denied")

// WhisperConfig configures a WhisperEngine.
type WhisperConfig struct {
	// RecorderCommand launches a process writing s16le 16kHz mono PCM to
	// stdout, e.g. {"sox", "-d", "-t", "raw", ...}.
	RecorderCommand []string
	ModelPath       string
	Language        string
}

// Probe checks whether whisper transcription can work with the given
// config. It does not load the model.
func Probe(cfg WhisperConfig) Capability {
	if len(cfg.RecorderCommand) == 0 {
		return Unavailable("no recorder command configured")
	}
	if _, err := exec.LookPath(cfg.RecorderCommand[0]); err != nil {
		return Unavailable(fmt.Sprintf("recorder %q not installed", cfg.RecorderCommand[0]))
	}
	if cfg.ModelPath == "" {
		return Unavailable("no speech model configured")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return Unavailable(fmt.Sprintf("speech model missing at %s", cfg.ModelPath))
	}
	return Available()
}

// WhisperEngine captures one utterance through an external recorder and
// transcribes it locally. Use one engine per utterance.
type WhisperEngine struct {
	cfg    WhisperConfig
	logger *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// NewWhisper creates an engine for a single utterance.
func NewWhisper(cfg WhisperConfig, logger *zap.Logger) *WhisperEngine {
	return &WhisperEngine{cfg: cfg, logger: logger}
}

// Start launches the recorder and begins endpointed capture. The stream
// ends after the final transcript or an error; the channel then closes.
func (e *WhisperEngine) Start(ctx context.Context) (<-chan Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil, errors.New("speech engine already started")
	}
	e.started = true

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	out := make(chan Event, 8)
	go e.run(ctx, out)
	return out, nil
}

// Stop cancels capture. The in-flight audio is still finalized, so a
// transcript may arrive after Stop returns.
func (e *WhisperEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *WhisperEngine) run(ctx context.Context, out chan<- Event) {
	defer close(out)
	defer func() {
		out <- Event{Kind: KindEnded}
	}()

	samples, err := e.capture(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		out <- Event{Kind: KindErr, Reason: err}
		return
	}
	if len(samples) < chunkSamples {
		out <- Event{Kind: KindErr, Reason: errors.New("no speech captured")}
		return
	}

	text, err := e.transcribe(samples, func(interim string) {
		select {
		case out <- Event{Kind: KindInterim, Text: interim}:
		default:
		}
	})
	if err != nil {
		out <- Event{Kind: KindErr, Reason: fmt.Errorf("transcribe: %w", err)}
		return
	}
	out <- Event{Kind: KindFinal, Text: text}
}

// capture reads PCM from the recorder until trailing silence after speech,
// max utterance length, or ctx cancellation. Cancellation returns whatever
// was heard so far with ctx.Err().
func (e *WhisperEngine) capture(ctx context.Context) ([]float32, error) {
	cmd := exec.CommandContext(ctx, e.cfg.RecorderCommand[0], e.cfg.RecorderCommand[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("recorder pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start recorder: %w", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	var (
		samples   []float32
		heard     bool
		silentFor time.Duration
		chunkDur  = time.Duration(chunkSamples) * time.Second / time.Duration(whisper.SampleRate)
		deadline  = time.Now().Add(maxUtterance)
		raw       = make([]byte, chunkSamples*2)
	)
	for {
		if ctx.Err() != nil {
			return samples, ctx.Err()
		}
		if time.Now().After(deadline) {
			return samples, nil
		}
		n, err := io.ReadFull(stdout, raw)
		if n > 0 {
			chunk := pcm16ToFloat32(raw[:n&^1])
			samples = append(samples, chunk...)
			if rms(chunk) >= silenceRMS {
				heard = true
				silentFor = 0
			} else if heard {
				silentFor += chunkDur
				if silentFor >= trailingSilence {
					return samples, nil
				}
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return samples, ctx.Err()
			}
			if micDenied(stderr.String()) {
				return nil, ErrMicPermission
			}
			if heard {
				return samples, nil
			}
			return nil, fmt.Errorf("recorder exited: %w", err)
		}
	}
}

func (e *WhisperEngine) transcribe(samples []float32, onSegment func(string)) (string, error) {
	model, err := whisper.New(e.cfg.ModelPath)
	if err != nil {
		return "", fmt.Errorf("load model: %w", err)
	}
	defer func() { _ = model.Close() }()

	wctx, err := model.NewContext()
	if err != nil {
		return "", err
	}
	if e.cfg.Language != "" {
		if err := wctx.SetLanguage(e.cfg.Language); err != nil {
			e.logger.Warn("speech language not supported, using auto", zap.String("lang", e.cfg.Language))
		}
	}

	var parts []string
	err = wctx.Process(samples, nil, func(seg whisper.Segment) {
		t := strings.TrimSpace(seg.Text)
		if t == "" {
			return
		}
		parts = append(parts, t)
		onSegment(strings.Join(parts, " "))
	}, nil)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, " "), nil
}

func pcm16ToFloat32(raw []byte) []float32 {
	out := make([]float32, len(raw)/2)
	for i := range out {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = float32(s) / 32768
	}
	return out
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func micDenied(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "permission denied") ||
		strings.Contains(s, "can't open input") ||
		strings.Contains(s, "cannot open audio device") ||
		strings.Contains(s, "device or resource busy")
}
