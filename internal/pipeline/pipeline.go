package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/researchlight/internal/config"
	"github.com/dgallion1/researchlight/internal/document"
	"github.com/dgallion1/researchlight/internal/embed"
	"github.com/dgallion1/researchlight/internal/llm"
	"github.com/dgallion1/researchlight/internal/metrics"
	"github.com/dgallion1/researchlight/internal/parser"
	"github.com/dgallion1/researchlight/internal/retrieval"
	"github.com/dgallion1/researchlight/internal/session"
	"github.com/dgallion1/researchlight/internal/summarize"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrUnreadable      = errors.New("could not read PDF")
	ErrNoAnswers       = errors.New("question answering is unavailable")
)

// Upload is one submitted PDF.
type Upload struct {
	Filename string
	Data     []byte
	Mode     string // optional; empty uses the configured default
}

// Pipeline turns uploads into sessions and answers questions about them.
type Pipeline struct {
	cfg      config.Config
	log      *slog.Logger
	sessions *session.Store
	stats    *llm.LLMStats

	model    *lazy[llm.Model]
	embedder *lazy[embed.Embedder]
	now      func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithModel uses m instead of the configured provider.
func WithModel(m llm.Model) Option {
	return func(p *Pipeline) { p.model = ready(m) }
}

// WithEmbedder uses e instead of the configured provider.
func WithEmbedder(e embed.Embedder) Option {
	return func(p *Pipeline) { p.embedder = ready(e) }
}

func New(cfg config.Config, log *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		log:      log,
		sessions: session.NewStore(cfg.MaxSessions, cfg.SessionTTL),
		stats:    llm.NewLLMStats(time.Hour),
		now:      time.Now,
	}
	p.model = newLazy(func() (llm.Model, error) { return newModel(cfg, p.stats, log) })
	p.embedder = newLazy(func() (embed.Embedder, error) { return newEmbedder(cfg, log) })
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Summarize parses the upload, summarizes it and stores the session. Uploading
// the same bytes in the same mode again returns the cached session.
func (p *Pipeline) Summarize(ctx context.Context, up Upload) (*session.Session, error) {
	par, err := parser.ForFile(up.Filename, p.cfg.PDFFallbackPdftotext)
	if err != nil {
		return nil, err
	}

	mode := session.ParseMode(up.Mode, session.Mode(p.cfg.SummaryMode))
	id := sessionID(up.Data, mode)
	if sess := p.sessions.Get(id); sess != nil {
		return sess, nil
	}
	log := p.log.With("session_id", id, "filename", up.Filename)

	if pp, ok := par.(*parser.PDFParser); ok {
		pp.Log = log
	}
	doc, err := par.Parse(bytes.NewReader(up.Data), up.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		return nil, fmt.Errorf("%w %s: %v", ErrUnreadable, up.Filename, err)
	}
	if doc.Empty() {
		log.Warn("no text layer found, summary will be empty")
	} else {
		log.Info("extracted text", "pages", len(doc.Pages))
	}

	summary, used, err := p.summarize(ctx, doc, mode, log)
	if err != nil {
		return nil, err
	}
	metrics.RecordSummary(string(used))
	log.Info("summary ready", "mode", used, "sentences", len(summary.Sentences))

	sess := &session.Session{
		ID:        id,
		Filename:  up.Filename,
		Document:  doc,
		Summary:   summary,
		Mode:      used,
		Sections:  doc.Sections(),
		CreatedAt: p.now(),
	}
	if e, err := p.embedder.get(); err != nil {
		log.Error("embedder unavailable, questions disabled", "error", err)
	} else {
		sess.Index = retrieval.NewIndex(doc, e)
	}
	p.sessions.Put(sess)
	log.Debug("session stored", "sessions", p.sessions.Len())
	return sess, nil
}

func (p *Pipeline) summarize(ctx context.Context, doc *document.Document, mode session.Mode, log *slog.Logger) (summarize.Summary, session.Mode, error) {
	text := doc.Text()
	if mode == session.ModeAbstractive {
		model, err := p.model.get()
		switch {
		case err != nil:
			log.Warn("summarization model unavailable, using extractive summary", "error", err)
		case model == nil:
			log.Warn("no summarization model configured, using extractive summary")
		default:
			a := &summarize.Abstractive{
				Model:       model,
				MaxChars:    p.cfg.ChunkChars,
				Bounds:      llm.Bounds{MinTokens: p.cfg.SummaryMinTokens, MaxTokens: p.cfg.SummaryMaxTokens},
				Concurrency: p.cfg.MaxConcurrentSummarize,
				Log:         log,
			}
			s, err := a.Summarize(ctx, text)
			if err != nil {
				return summarize.Summary{}, mode, fmt.Errorf("abstractive summary: %w", err)
			}
			return s, session.ModeAbstractive, nil
		}
	}
	s := summarize.Extractive(text)
	if n := p.cfg.SummarySentences; n > 0 && n < len(s.Sentences) {
		s.Sentences = s.Sentences[:n]
	}
	return s, session.ModeExtractive, nil
}

// Answer returns the page of the session's document that best matches question.
func (p *Pipeline) Answer(ctx context.Context, sessionID, question string) (retrieval.Match, error) {
	sess := p.sessions.Get(sessionID)
	if sess == nil {
		return retrieval.Match{}, ErrSessionNotFound
	}
	if sess.Index == nil {
		return retrieval.Match{}, ErrNoAnswers
	}
	m, err := sess.Index.Best(ctx, question)
	metrics.RecordAnswer(err)
	if err != nil {
		p.log.Warn("answer failed", "session_id", sessionID, "error", err)
		return retrieval.Match{}, err
	}
	p.log.Info("answered question", "session_id", sessionID, "page", m.Page, "score", m.Score)
	return m, nil
}

// Session returns a stored session or nil.
func (p *Pipeline) Session(id string) *session.Session {
	return p.sessions.Get(id)
}

// ModelStats reports the summarization model name and its latency window.
// ok is false when no model is configured.
func (p *Pipeline) ModelStats() (name string, snap llm.StatsSnapshot, ok bool) {
	model, err := p.model.get()
	if err != nil || model == nil {
		return "", llm.StatsSnapshot{}, false
	}
	return model.Name(), p.stats.Snapshot(), true
}

// Close releases the summarization client if one was created.
func (p *Pipeline) Close() {
	model, ok := p.model.peek()
	if !ok || model == nil {
		return
	}
	if c, ok := model.(interface{ Close() }); ok {
		c.Close()
	}
}

func sessionID(data []byte, mode session.Mode) string {
	return document.ContentHashHex(data)[:16] + "-" + string(mode)
}
