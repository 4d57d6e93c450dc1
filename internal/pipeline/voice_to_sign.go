// Package pipeline sequences the voice-to-sign and sign-to-voice
// workflows. Every stage is independently fallible: a failure substitutes
// canned content and the run continues, so the caller always receives a
// rendered result. StageResult source tags keep genuine AI output
// distinguishable from substitutes.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"SignBridge/internal/ai"
	"SignBridge/internal/emoji"
	"SignBridge/internal/models"
	"SignBridge/pkg/errors"
	"SignBridge/pkg/logger"
)

// Canned substitutes shown when a stage fails.
const (
	SampleTranscription    = "Bonjour, comment allez-vous aujourd'hui ?"
	FallbackConfidence     = 95
	TranslationUnavailable = "Traduction LSF non disponible"
	TargetLanguage         = "LSF"
)

// Source tags one pipeline value as genuine or substituted.
type Source string

const (
	SourceReal     Source = "real"
	SourceFallback Source = "fallback"
)

// Uploader is the slice of the upload service the pipeline needs.
type Uploader interface {
	UploadAudioFile(ctx context.Context, userID, fileName, mimeType string, data []byte) (*models.AudioFile, error)
}

// AIClient is the slice of the AI client the pipeline needs.
type AIClient interface {
	TranscribeAudio(ctx context.Context, audioURL, language string) (ai.TranscriptionResult, error)
	TranslateToSignLanguage(ctx context.Context, text, targetLanguage string) (ai.TranslationResult, error)
	GenerateSignEmojis(ctx context.Context, text string) (string, bool)
}

// StageObserver receives per-stage and per-run counters.
type StageObserver interface {
	ObserveStage(stage, source string)
	ObserveRun()
}

// VoiceToSignResult is everything one run renders. Each value carries its
// source so a real transcription shown next to a substituted translation
// stays distinguishable (the asymmetric-fallback behavior is intentional).
type VoiceToSignResult struct {
	AudioURL            string                 `json:"audioUrl,omitempty"`
	Transcription       ai.TranscriptionResult `json:"transcription"`
	TranscriptionSource Source                 `json:"transcriptionSource"`
	Translation         ai.TranslationResult   `json:"translation"`
	TranslationSource   Source                 `json:"translationSource"`
	Emojis              string                 `json:"emojis"`
	EmojiSource         Source                 `json:"emojiSource"`
}

// VoiceToSign runs capture output through upload, transcription,
// translation and emoji generation.
type VoiceToSign struct {
	uploads  Uploader
	ai       AIClient
	sink     EventSink
	observer StageObserver
	language string
}

func NewVoiceToSign(uploads Uploader, client AIClient, sink EventSink) *VoiceToSign {
	if sink == nil {
		sink = NopSink{}
	}
	return &VoiceToSign{uploads: uploads, ai: client, sink: sink, language: "fr"}
}

// WithObserver attaches stage metrics.
func (p *VoiceToSign) WithObserver(o StageObserver) *VoiceToSign {
	p.observer = o
	return p
}

// Process runs the full pipeline for one captured artifact. It never
// returns an error: every failure path substitutes content and the run
// completes. The cycle event fires exactly once whatever branch is taken.
func (p *VoiceToSign) Process(ctx context.Context, userID, fileName, mimeType string, data []byte) VoiceToSignResult {
	var result VoiceToSignResult
	defer func() {
		p.sink.Publish(cycleEvent(userID))
		if p.observer != nil {
			p.observer.ObserveRun()
		}
	}()

	// upload
	p.sink.Publish(stageEvent(userID, "upload", "running"))
	artifact, err := p.uploads.UploadAudioFile(ctx, userID, fileName, mimeType, data)
	if err != nil {
		p.failStage(userID, "upload", err)
		p.substituteTranscription(ctx, &result)
		return result
	}
	result.AudioURL = artifact.FilePath
	p.observeStage("upload", SourceReal)
	p.sink.Publish(stageEvent(userID, "upload", "done"))

	// transcribe
	p.sink.Publish(stageEvent(userID, "transcribe", "running"))
	transcription, err := p.ai.TranscribeAudio(ctx, artifact.FilePath, p.language)
	if err != nil {
		p.failStage(userID, "transcribe", err)
		p.substituteTranscription(ctx, &result)
		return result
	}
	result.Transcription = transcription
	result.TranscriptionSource = SourceReal
	p.observeStage("transcribe", SourceReal)
	p.sink.Publish(stageEvent(userID, "transcribe", "done"))

	// translate
	p.sink.Publish(stageEvent(userID, "translate", "running"))
	translation, err := p.ai.TranslateToSignLanguage(ctx, transcription.Text, TargetLanguage)
	if err != nil {
		p.failStage(userID, "translate", err)
		result.Translation = ai.TranslationResult{Text: TranslationUnavailable, SourceLang: p.language, TargetLang: TargetLanguage}
		result.TranslationSource = SourceFallback
		// emojis come from the transcription here, not from a translation
		result.Emojis = emoji.Generate(transcription.Text)
		result.EmojiSource = SourceFallback
		p.observeStage("emojis", SourceFallback)
		return result
	}
	result.Translation = translation
	result.TranslationSource = SourceReal
	p.observeStage("translate", SourceReal)
	p.sink.Publish(stageEvent(userID, "translate", "done"))

	// emoji generation self-falls-back inside the client
	p.sink.Publish(stageEvent(userID, "emojis", "running"))
	sequence, fromAPI := p.ai.GenerateSignEmojis(ctx, transcription.Text)
	result.Emojis = sequence
	result.EmojiSource = SourceFallback
	if fromAPI {
		result.EmojiSource = SourceReal
	}
	p.observeStage("emojis", result.EmojiSource)
	p.sink.Publish(stageEvent(userID, "emojis", "done"))

	return result
}

// substituteTranscription fills the canned sample, its emoji gloss and a
// fixed confidence, leaving the translation empty: the run skips straight
// to presentation.
func (p *VoiceToSign) substituteTranscription(ctx context.Context, result *VoiceToSignResult) {
	result.Transcription = ai.TranscriptionResult{
		Text:       SampleTranscription,
		Confidence: FallbackConfidence,
		Language:   p.language,
	}
	result.TranscriptionSource = SourceFallback
	result.TranslationSource = SourceFallback
	result.Emojis = emoji.Generate(SampleTranscription)
	result.EmojiSource = SourceFallback
	p.observeStage("transcribe", SourceFallback)
}

func (p *VoiceToSign) failStage(userID, stage string, err error) {
	logger.Warn("pipeline stage failed",
		zap.String("stage", stage), zap.String("user", userID), zap.Error(err))
	p.sink.Publish(stageEvent(userID, stage, "failed"))
	p.sink.Publish(noticeEvent(userID, noticeFor(err)))
	p.observeStage(stage, SourceFallback)
}

func (p *VoiceToSign) observeStage(stage string, source Source) {
	if p.observer != nil {
		p.observer.ObserveStage(stage, string(source))
	}
}

// noticeFor renders a classified error as the banner text shown to the
// user. The quota case names the simulation explicitly.
func noticeFor(err error) string {
	switch errors.GetCode(err) {
	case errors.CodeQuotaExceeded:
		return "Quota API dépassé — réponse simulée affichée"
	case errors.CodeNotConfigured:
		return "Service IA non configuré — réponse simulée affichée"
	case errors.CodeUnauthenticated:
		return "Connexion requise pour envoyer l'audio"
	case errors.CodeInvalidCredential:
		return "Clé API invalide — vérifiez la configuration"
	case errors.CodeForbidden:
		return "Accès à l'API refusé"
	case errors.CodePartialRollback:
		return "Échec partiel de l'envoi — un nettoyage manuel peut être requis"
	default:
		return "Service temporairement indisponible"
	}
}
