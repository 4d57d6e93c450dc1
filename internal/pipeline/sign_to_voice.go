package pipeline

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"SignBridge/internal/emoji"
	"SignBridge/pkg/errors"
	"SignBridge/pkg/logger"
)

// Detection candidates. Recognition hardware is out of scope, so a run
// picks from this fixed set with a randomly advancing pointer.
var detectionPhrases = []string{
	"Bonjour, je suis content de vous voir",
	"Merci beaucoup pour votre aide",
	"Comment allez-vous aujourd'hui ?",
	"Au revoir, à bientôt",
}

// DetectionInterval paces the simulated recognizer.
const DetectionInterval = 800 * time.Millisecond

// Synthesizer renders recognized text as speech. The platform TTS engine
// lives outside this service; the default implementation only reports
// what would be spoken.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// LogSynthesizer is the stub used until a real TTS backend exists.
type LogSynthesizer struct{}

func (LogSynthesizer) Speak(_ context.Context, text string) error {
	logger.Info("synthèse vocale", zap.String("text", text))
	return nil
}

// SignToVoiceResult is what one detection run produces.
type SignToVoiceResult struct {
	Text   string `json:"text"`
	Emojis string `json:"emojis"`
	Spoken bool   `json:"spoken"`
}

// SignToVoice simulates sign detection and voices the result. One run at
// a time per user, same guard semantics as the voice direction.
type SignToVoice struct {
	synth    Synthesizer
	sink     EventSink
	observer StageObserver

	interval time.Duration

	mu     sync.Mutex
	rng    *rand.Rand
	cursor int
	active map[string]bool
}

func NewSignToVoice(synth Synthesizer, sink EventSink) *SignToVoice {
	if synth == nil {
		synth = LogSynthesizer{}
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &SignToVoice{
		synth:    synth,
		sink:     sink,
		interval: DetectionInterval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		active:   make(map[string]bool),
	}
}

// WithObserver attaches stage metrics.
func (p *SignToVoice) WithObserver(o StageObserver) *SignToVoice {
	p.observer = o
	return p
}

// Detect runs one simulated detection cycle: a short detecting phase,
// then phrase selection, emoji derivation and speech synthesis. The
// ticks parameter bounds the detecting phase; the caller's context can
// cut it short.
func (p *SignToVoice) Detect(ctx context.Context, userID string, ticks int) (SignToVoiceResult, error) {
	if err := p.begin(userID); err != nil {
		return SignToVoiceResult{}, err
	}
	defer p.finish(userID)
	defer func() {
		p.sink.Publish(cycleEvent(userID))
		if p.observer != nil {
			p.observer.ObserveRun()
		}
	}()

	p.sink.Publish(stageEvent(userID, "detect", "running"))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			p.sink.Publish(stageEvent(userID, "detect", "failed"))
			return SignToVoiceResult{}, errors.Wrap(ctx.Err(), "détection interrompue")
		case <-ticker.C:
			p.advance()
		}
	}
	text := p.phrase()
	p.observeStage("detect", SourceFallback)
	p.sink.Publish(stageEvent(userID, "detect", "done"))

	result := SignToVoiceResult{
		Text:   text,
		Emojis: emoji.Generate(text),
	}

	p.sink.Publish(stageEvent(userID, "speak", "running"))
	if err := p.synth.Speak(ctx, text); err != nil {
		logger.Warn("speech synthesis failed", zap.String("user", userID), zap.Error(err))
		p.sink.Publish(stageEvent(userID, "speak", "failed"))
		p.sink.Publish(noticeEvent(userID, "Synthèse vocale indisponible"))
		p.observeStage("speak", SourceFallback)
		return result, nil
	}
	result.Spoken = true
	p.observeStage("speak", SourceReal)
	p.sink.Publish(stageEvent(userID, "speak", "done"))
	return result, nil
}

func (p *SignToVoice) begin(userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active[userID] {
		return errors.WithCode(errors.CodeConflict, "détection déjà en cours")
	}
	p.active[userID] = true
	return nil
}

func (p *SignToVoice) finish(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, userID)
}

// advance moves the pointer by a random step so consecutive runs do not
// replay the array in order.
func (p *SignToVoice) advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = (p.cursor + 1 + p.rng.Intn(len(detectionPhrases))) % len(detectionPhrases)
}

func (p *SignToVoice) phrase() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return detectionPhrases[p.cursor]
}

func (p *SignToVoice) observeStage(stage string, source Source) {
	if p.observer != nil {
		p.observer.ObserveStage(stage, string(source))
	}
}
