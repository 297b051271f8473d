// Package models defines the data structures for transcript and translation events.
package models

// Utterance is a recognized piece of speech. A partial utterance may be
// superseded by a later partial or promoted to final; a final utterance is
// terminal for its speech segment.
type Utterance struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	IsFinal    bool    `json:"isFinal"`
	SourceLang string  `json:"sourceLang"`
	Confidence float64 `json:"confidence,omitempty"`
	Timestamp  int64   `json:"timestamp"`
}

// TranslationResult is the outcome of one translation call for one
// (utterance, target language) pair.
type TranslationResult struct {
	UtteranceID string `json:"utteranceId"`
	TargetLang  string `json:"targetLang"`
	Text        string `json:"text,omitempty"`
	Error       string `json:"error,omitempty"`
}

// TranscriptPartial is the event payload for an interim transcript.
type TranscriptPartial struct {
	EventType   string `json:"eventType"`
	UtteranceID string `json:"utteranceId"`
	SourceLang  string `json:"sourceLang"`
	Text        string `json:"text"`
	Timestamp   int64  `json:"timestamp"`
}

// TranscriptFinal is the event payload for a finalized transcript.
type TranscriptFinal struct {
	EventType   string  `json:"eventType"`
	UtteranceID string  `json:"utteranceId"`
	SourceLang  string  `json:"sourceLang"`
	Text        string  `json:"text"`
	Confidence  float64 `json:"confidence"`
	Timestamp   int64   `json:"timestamp"`
}

// TranslationEvent is the event payload for a completed or failed translation.
type TranslationEvent struct {
	EventType   string `json:"eventType"`
	UtteranceID string `json:"utteranceId"`
	SourceLang  string `json:"sourceLang"`
	TargetLang  string `json:"targetLang"`
	Text        string `json:"text,omitempty"`
	Error       string `json:"error,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}
