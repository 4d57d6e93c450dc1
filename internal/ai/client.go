// Package ai wraps the hosted OpenAI-compatible API used for speech
// transcription, sign-language gloss translation and emoji generation.
// Error classification happens here, once, at the boundary: callers
// branch on error codes, never on message text.
package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"SignBridge/internal/emoji"
	"SignBridge/pkg/errors"
)

const (
	systemPromptTranslate = "Tu es un expert en traduction vers la langue des signes française (LSF). " +
		"Tu reformules les phrases en glose LSF : ordre spatial, mots-clés en majuscules, sans mots grammaticaux superflus."
	systemPromptEmojis = "Tu es un assistant qui représente des phrases en une séquence d'emojis " +
		"évoquant les signes LSF correspondants. Réponds uniquement avec les emojis, séparés par des espaces."
)

// Observer receives one event per AI API request.
type Observer interface {
	ObserveAIRequest(endpoint, outcome string)
}

// Config holds the client settings. An empty APIKey is allowed: the
// client stays constructible and every call fails with a not-configured
// error, matching how the app degrades without its environment.
type Config struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	TranscribeModel string
}

type Client struct {
	cfg      Config
	oa       *openai.Client
	http     *http.Client
	log      *logrus.Logger
	observer Observer
}

func NewClient(cfg Config, log *logrus.Logger) *Client {
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT3Dot5Turbo
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = openai.Whisper1
	}
	if log == nil {
		log = logrus.New()
	}
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		cfg:  cfg,
		oa:   openai.NewClientWithConfig(oaCfg),
		http: http.DefaultClient,
		log:  log,
	}
}

// WithObserver attaches a metrics observer.
func (c *Client) WithObserver(o Observer) *Client {
	c.observer = o
	return c
}

// TranscribeAudio downloads the artifact at audioURL and submits it to the
// speech-to-text endpoint.
func (c *Client) TranscribeAudio(ctx context.Context, audioURL, language string) (TranscriptionResult, error) {
	if err := c.requireKey(); err != nil {
		return TranscriptionResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return TranscriptionResult{}, errors.WrapCode(errors.CodeUpstream, err, "URL audio invalide")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("transcriptions", "error")
		return TranscriptionResult{}, errors.WrapCode(errors.CodeUpstream, err, "téléchargement audio impossible")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.observe("transcriptions", "error")
		return TranscriptionResult{}, errors.WithCodef(errors.CodeUpstream, "téléchargement audio: HTTP %d", resp.StatusCode)
	}

	out, err := c.oa.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.TranscribeModel,
		FilePath: fileNameFromURL(audioURL),
		Reader:   resp.Body,
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		c.observe("transcriptions", "error")
		return TranscriptionResult{}, c.classify(err)
	}
	c.observe("transcriptions", "ok")

	result := TranscriptionResult{Text: strings.TrimSpace(out.Text), Language: out.Language}
	if result.Language == "" {
		result.Language = language
	}
	return result, nil
}

// TranslateToSignLanguage produces an LSF gloss for text.
func (c *Client) TranslateToSignLanguage(ctx context.Context, text, targetLanguage string) (TranslationResult, error) {
	if err := c.requireKey(); err != nil {
		return TranslationResult{}, err
	}

	prompt := fmt.Sprintf("Traduis la phrase suivante en glose %s : « %s »", targetLanguage, text)
	content, err := c.chat(ctx, systemPromptTranslate, prompt)
	if err != nil {
		c.observe("chat/translate", "error")
		return TranslationResult{}, c.classify(err)
	}
	c.observe("chat/translate", "ok")
	return TranslationResult{Text: content, SourceLang: "fr", TargetLang: targetLanguage}, nil
}

// GenerateSignEmojis asks the chat endpoint for an emoji gloss. Any
// failure, including quota and credential errors, is absorbed here and
// replaced by the local dictionary: this method never returns an error.
// The second return value reports whether the API produced the sequence,
// so callers can tell genuine output from the substitute.
func (c *Client) GenerateSignEmojis(ctx context.Context, text string) (string, bool) {
	if err := c.requireKey(); err != nil {
		c.log.WithError(err).Debug("emoji generation not configured, using local dictionary")
		return emoji.Generate(text), false
	}

	prompt := fmt.Sprintf("Représente cette phrase en emojis : « %s »", text)
	content, err := c.chat(ctx, systemPromptEmojis, prompt)
	if err != nil {
		c.observe("chat/emojis", "fallback")
		c.log.WithError(c.classify(err)).Warn("emoji generation failed, using local dictionary")
		return emoji.Generate(text), false
	}
	c.observe("chat/emojis", "ok")
	if strings.TrimSpace(content) == "" {
		return emoji.Generate(text), false
	}
	return strings.TrimSpace(content), true
}

// TestConnection probes the models endpoint. Errors are swallowed; the
// method only answers "is the API reachable with this key".
func (c *Client) TestConnection(ctx context.Context) bool {
	if c.cfg.APIKey == "" {
		return false
	}
	_, err := c.oa.ListModels(ctx)
	if err != nil {
		c.log.WithError(err).Debug("AI API connectivity probe failed")
		return false
	}
	return true
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	resp, err := c.oa.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.WithCode(errors.CodeUpstream, "réponse vide de l'API")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) observe(endpoint, outcome string) {
	if c.observer != nil {
		c.observer.ObserveAIRequest(endpoint, outcome)
	}
}

func (c *Client) requireKey() error {
	if c.cfg.APIKey == "" {
		return errors.WithCode(errors.CodeNotConfigured, "Clé API non configurée")
	}
	return nil
}

// classify maps transport failures onto the error taxonomy. HTTP 429 and
// quota mentions become CodeQuotaExceeded, 401 CodeInvalidCredential,
// 403 CodeForbidden, everything else CodeUpstream with the server text.
func (c *Client) classify(err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests || strings.Contains(msg, "quota"):
			return errors.WrapCode(errors.CodeQuotaExceeded, err, "Quota API dépassé, bascule en mode simulation")
		case apiErr.HTTPStatusCode == http.StatusUnauthorized:
			return errors.WrapCode(errors.CodeInvalidCredential, err, "Clé API invalide")
		case apiErr.HTTPStatusCode == http.StatusForbidden:
			return errors.WrapCode(errors.CodeForbidden, err, "Accès refusé par l'API")
		default:
			return errors.WrapCode(errors.CodeUpstream, err, apiErr.Message)
		}
	}
	if errors.GetCode(err) != errors.CodeUnknown {
		return err
	}
	return errors.WrapCode(errors.CodeUpstream, err, "erreur API")
}

func fileNameFromURL(u string) string {
	if i := strings.LastIndexByte(u, '/'); i >= 0 && i+1 < len(u) {
		return u[i+1:]
	}
	return "audio.m4a"
}
