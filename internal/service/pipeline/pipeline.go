// Package pipeline orchestrates audio capture, streaming recognition and
// fan-out translation into per-language transcript buffers.
//
// One goroutine pulls audio frames and feeds the recognizer; it never waits
// on translation I/O. Every finalized utterance fans out to one translation
// job per target language. Jobs for the same language are consumed by a
// single long-lived dispatcher goroutine, so records within one language's
// buffer always appear in utterance-finalization order while languages
// proceed independently of each other.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"speech-translate-service/internal/audio"
	"speech-translate-service/internal/config"
	"speech-translate-service/internal/events"
	"speech-translate-service/internal/models"
	"speech-translate-service/internal/observability/logging"
	"speech-translate-service/internal/observability/metrics"
	"speech-translate-service/internal/recognizer"
	"speech-translate-service/internal/service/transcript"
	"speech-translate-service/internal/translator"
)

// ErrAlreadyRunning is returned by Start when the pipeline is listening.
var ErrAlreadyRunning = errors.New("pipeline already running")

// SourceFactory opens a fresh audio source for one listening session.
type SourceFactory func() (audio.Source, error)

// Options configures a Pipeline.
type Options struct {
	Source           SourceFactory
	Recognizer       recognizer.Adapter
	Backend          translator.Backend
	Store            *transcript.Store
	Publisher        *events.Publisher
	SourceLang       string
	Targets          []config.Language
	TranslateTimeout time.Duration

	// QueueSize bounds each per-language job queue. When a queue is full
	// the overflow is recorded as a visible error record rather than
	// silently dropped or allowed to block the recognition loop.
	QueueSize int
}

type dispatcher struct {
	lang config.Language
	jobs chan models.Utterance
}

// Pipeline is the transcription core. Its state machine is
// Idle -> Listening -> Idle and is re-entrant: a stopped pipeline may be
// started again. Stop never cancels in-flight translations; they complete
// and land in their buffers after Stop returns.
type Pipeline struct {
	opts Options
	log  zerolog.Logger
	mtr  *metrics.Metrics

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	loopDone chan struct{}
	src      audio.Source

	// partialMu guards partial-dedupe state touched from recognizer
	// callbacks.
	partialMu   sync.Mutex
	lastPartial string
	segmentID   string

	dispatchers map[string]*dispatcher
	inflight    sync.WaitGroup
	closeOnce   sync.Once
}

// New creates a pipeline and starts its per-language dispatchers. The
// dispatchers are keyed by language and survive stop/start cycles, which
// keeps per-language ordering intact across sessions.
func New(opts Options) *Pipeline {
	if opts.TranslateTimeout <= 0 {
		opts.TranslateTimeout = 10 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}

	p := &Pipeline{
		opts:        opts,
		log:         logging.WithComponent("pipeline"),
		mtr:         metrics.DefaultMetrics,
		dispatchers: make(map[string]*dispatcher, len(opts.Targets)),
	}

	for _, lang := range opts.Targets {
		d := &dispatcher{lang: lang, jobs: make(chan models.Utterance, opts.QueueSize)}
		p.dispatchers[lang.Code] = d
		go p.dispatchLoop(d)
	}
	return p
}

// Running reports whether the pipeline is in the listening state.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start transitions Idle -> Listening. It opens the audio source, starts a
// recognizer session and launches the recognition loop. Fails with
// ErrAlreadyRunning when not Idle; device open failures surface here before
// the listening state is entered.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}

	src, err := p.opts.Source()
	if err != nil {
		return fmt.Errorf("open audio source: %w", err)
	}
	if err := src.Start(ctx); err != nil {
		return fmt.Errorf("audio device unavailable: %w", err)
	}

	if err := p.opts.Recognizer.Start(ctx, p); err != nil {
		src.Close()
		return fmt.Errorf("start recognizer: %w", err)
	}

	p.src = src
	p.stop = make(chan struct{})
	p.loopDone = make(chan struct{})
	p.running = true

	p.mtr.PipelineStarts.Inc()
	p.mtr.PipelineActive.Set(1)
	p.log.Info().Msg("Pipeline listening")

	go p.recognitionLoop(ctx, src, p.stop, p.loopDone)
	return nil
}

// recognitionLoop pulls frames and feeds the recognizer. Waiting for the
// next frame is its only suspension point.
func (p *Pipeline) recognitionLoop(ctx context.Context, src audio.Source, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case frame, ok := <-src.Frames():
			if !ok {
				return
			}
			if err := p.opts.Recognizer.SendAudio(ctx, frame); err != nil {
				select {
				case <-stop:
					return
				default:
				}
				p.mtr.RecognizerErrors.Inc()
				p.log.Error().Err(err).Msg("Recognizer feed failed")
			}
		}
	}
}

// Stop transitions Listening -> Idle. Safe to call from any goroutine and a
// no-op when already Idle. After Stop returns no further frames are fed to
// the recognizer; translations already dispatched keep running and their
// results are still delivered to the buffers.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	src := p.src
	p.src = nil
	loopDone := p.loopDone
	p.mu.Unlock()

	src.Close()
	p.opts.Recognizer.Close()
	<-loopDone

	p.partialMu.Lock()
	p.lastPartial = ""
	p.segmentID = ""
	p.partialMu.Unlock()

	p.mtr.PipelineStops.Inc()
	p.mtr.PipelineActive.Set(0)
	p.log.Info().Msg("Pipeline stopped")
}

// Drain waits up to timeout for in-flight translation jobs to finish.
// Returns true when everything completed within the timeout.
func (p *Pipeline) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close stops the pipeline and shuts down the per-language dispatchers.
// Only for process shutdown; a closed pipeline cannot be restarted.
func (p *Pipeline) Close() {
	p.Stop()
	p.closeOnce.Do(func() {
		for _, d := range p.dispatchers {
			close(d.jobs)
		}
	})
}

// --- recognizer.Callback implementation ---

// OnPartial handles an unstable hypothesis: duplicates are skipped, the
// source language's transient partial line is replaced (never appended).
func (p *Pipeline) OnPartial(text string) {
	if text == "" {
		return
	}

	p.partialMu.Lock()
	if text == p.lastPartial {
		p.partialMu.Unlock()
		p.mtr.PartialsDeduped.Inc()
		return
	}
	p.lastPartial = text
	if p.segmentID == "" {
		p.segmentID = uuid.NewString()
	}
	segID := p.segmentID
	p.partialMu.Unlock()

	p.mtr.PartialsTotal.Inc()

	if b, err := p.opts.Store.Buffer(p.opts.SourceLang); err == nil {
		b.SetPartial(text)
	}

	if p.opts.Publisher != nil {
		ev := models.TranscriptPartial{
			EventType:   "speech.transcript.partial",
			UtteranceID: segID,
			SourceLang:  p.opts.SourceLang,
			Text:        text,
			Timestamp:   time.Now().UnixMilli(),
		}
		if err := p.opts.Publisher.PublishPartial(context.Background(), segID, ev); err != nil {
			p.log.Error().Err(err).Msg("Failed to publish partial")
		}
	}
}

// OnFinal handles a stable transcript: the transient partial is cleared, the
// text is appended to the source buffer and one translation job per target
// language is dispatched.
func (p *Pipeline) OnFinal(text string, confidence float64) {
	if text == "" {
		return
	}

	p.partialMu.Lock()
	utteranceID := p.segmentID
	if utteranceID == "" {
		utteranceID = uuid.NewString()
	}
	p.segmentID = ""
	p.lastPartial = ""
	p.partialMu.Unlock()

	p.mtr.FinalsTotal.Inc()

	if b, err := p.opts.Store.Buffer(p.opts.SourceLang); err == nil {
		b.ClearPartial()
		b.Append(text)
	}

	utt := models.Utterance{
		ID:         utteranceID,
		Text:       text,
		IsFinal:    true,
		SourceLang: p.opts.SourceLang,
		Confidence: confidence,
		Timestamp:  time.Now().UnixMilli(),
	}

	if p.opts.Publisher != nil {
		ev := models.TranscriptFinal{
			EventType:   "speech.transcript.final",
			UtteranceID: utt.ID,
			SourceLang:  utt.SourceLang,
			Text:        utt.Text,
			Confidence:  utt.Confidence,
			Timestamp:   utt.Timestamp,
		}
		if err := p.opts.Publisher.PublishFinal(context.Background(), utt.ID, ev); err != nil {
			p.log.Error().Err(err).Msg("Failed to publish final")
		}
	}

	p.fanOut(utt)
}

// OnError handles recognizer errors. They are contained: logged and counted,
// never fatal to translation of already-finalized utterances.
func (p *Pipeline) OnError(err error) {
	p.mtr.RecognizerErrors.Inc()
	p.log.Error().Err(err).Msg("Recognizer error")
}

// fanOut enqueues one translation job per target language. A full queue is
// surfaced as a visible error record instead of blocking the recognition
// loop or silently dropping the utterance.
func (p *Pipeline) fanOut(utt models.Utterance) {
	for _, d := range p.dispatchers {
		p.inflight.Add(1)
		select {
		case d.jobs <- utt:
			p.mtr.TranslationsQueued.WithLabelValues(d.lang.Code).Inc()
		default:
			p.inflight.Done()
			p.mtr.TranslationsTotal.WithLabelValues(d.lang.Code, "overflow").Inc()
			if b, err := p.opts.Store.Buffer(d.lang.Code); err == nil {
				b.AppendError("⚠️ translation queue overflow")
			}
		}
	}
}

// dispatchLoop serializes translation for one target language.
func (p *Pipeline) dispatchLoop(d *dispatcher) {
	for utt := range d.jobs {
		p.mtr.TranslationsQueued.WithLabelValues(d.lang.Code).Dec()
		p.translate(d.lang, utt)
		p.inflight.Done()
	}
}

// translate performs one translation call and delivers the outcome to the
// language's buffer. Failures become visibly marked records; there is no
// retry, and the next utterance is unaffected.
func (p *Pipeline) translate(lang config.Language, utt models.Utterance) {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.TranslateTimeout)
	defer cancel()

	start := time.Now()
	translated, err := p.opts.Backend.Translate(ctx, utt.Text, utt.SourceLang, lang.Code)
	p.mtr.RecordTranslation(lang.Code, err, time.Since(start))

	b, berr := p.opts.Store.Buffer(lang.Code)
	if berr != nil {
		p.log.Error().Err(berr).Str("lang", lang.Code).Msg("No buffer for target language")
		return
	}

	result := models.TranslationResult{
		UtteranceID: utt.ID,
		TargetLang:  lang.Code,
	}
	if err != nil {
		result.Error = err.Error()
		b.AppendError(errorMarker(err))
		logging.WithUtterance(utt.ID, lang.Code).Error().
			Err(err).
			Msg("Translation failed")
	} else {
		result.Text = translated
		b.Append(translated)
	}

	if p.opts.Publisher != nil {
		ev := models.TranslationEvent{
			EventType:   "speech.translation",
			UtteranceID: result.UtteranceID,
			SourceLang:  utt.SourceLang,
			TargetLang:  result.TargetLang,
			Text:        result.Text,
			Error:       result.Error,
			Timestamp:   time.Now().UnixMilli(),
		}
		if perr := p.opts.Publisher.PublishTranslation(context.Background(), utt.ID, ev); perr != nil {
			p.log.Error().Err(perr).Msg("Failed to publish translation")
		}
	}
}

// errorMarker renders a failed translation as a visible transcript record.
func errorMarker(err error) string {
	var statusErr *translator.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("❌ Error (%d)", statusErr.Status)
	}
	return fmt.Sprintf("⚠️ %v", err)
}
