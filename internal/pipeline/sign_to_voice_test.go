package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignBridge/internal/emoji"
	"SignBridge/pkg/errors"
)

type recordingSynth struct {
	spoken []string
	err    error
}

func (s *recordingSynth) Speak(_ context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.spoken = append(s.spoken, text)
	return nil
}

func TestDetectProducesKnownPhrase(t *testing.T) {
	synth := &recordingSynth{}
	sink := &recordingSink{}
	p := NewSignToVoice(synth, sink)
	p.interval = time.Millisecond

	got, err := p.Detect(context.Background(), "user-1", 3)
	require.NoError(t, err)

	assert.Contains(t, detectionPhrases, got.Text)
	assert.Equal(t, emoji.Generate(got.Text), got.Emojis)
	assert.True(t, got.Spoken)
	require.Len(t, synth.spoken, 1)
	assert.Equal(t, got.Text, synth.spoken[0])
	assert.Len(t, sink.byType(EventCycle), 1)
}

func TestDetectSynthFailureStillReturnsResult(t *testing.T) {
	sink := &recordingSink{}
	p := NewSignToVoice(&recordingSynth{err: errors.New("engine down")}, sink)

	got, err := p.Detect(context.Background(), "user-1", 0)
	require.NoError(t, err)
	assert.False(t, got.Spoken)
	assert.NotEmpty(t, got.Text)

	notices := sink.byType(EventNotice)
	require.Len(t, notices, 1)
	assert.Equal(t, "Synthèse vocale indisponible", notices[0].Detail)
}

func TestDetectRejectsConcurrentRun(t *testing.T) {
	p := NewSignToVoice(nil, nil)
	p.interval = 50 * time.Millisecond

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		p.Detect(context.Background(), "user-1", 4)
		close(done)
	}()
	<-started
	time.Sleep(10 * time.Millisecond)

	_, err := p.Detect(context.Background(), "user-1", 0)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConflict))
	<-done

	// slot freed after the run
	_, err = p.Detect(context.Background(), "user-1", 0)
	assert.NoError(t, err)
}

func TestDetectHonorsContextCancellation(t *testing.T) {
	p := NewSignToVoice(&recordingSynth{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Detect(ctx, "user-1", 5)
	require.Error(t, err)
}
