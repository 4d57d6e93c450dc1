package ai

// TranscriptionResult is the speech-to-text outcome for one artifact.
// Confidence is a 0-100 score, 0 when the backend reports none. Transient:
// held in pipeline state for one run, never persisted.
type TranscriptionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	Language   string  `json:"language,omitempty"`
}

// TranslationResult carries the sign-language gloss for a transcription.
type TranslationResult struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}
