package session

import (
	"time"

	"github.com/dgallion1/researchlight/internal/document"
	"github.com/dgallion1/researchlight/internal/retrieval"
	"github.com/dgallion1/researchlight/internal/summarize"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Mode selects how a summary is produced.
type Mode string

const (
	ModeExtractive  Mode = "extractive"
	ModeAbstractive Mode = "abstractive"
)

// ParseMode maps user input to a Mode, falling back to def.
func ParseMode(s string, def Mode) Mode {
	switch Mode(s) {
	case ModeExtractive, ModeAbstractive:
		return Mode(s)
	}
	return def
}

// Session is one uploaded document and everything derived from it. All
// fields are written before the session is stored and read-only afterwards.
type Session struct {
	ID        string
	Filename  string
	Document  *document.Document
	Summary   summarize.Summary
	Mode      Mode
	Sections  map[string][]int
	Index     *retrieval.Index
	CreatedAt time.Time
}

// Snapshot is a JSON-safe view of a session.
type Snapshot struct {
	ID        string           `json:"session_id"`
	Filename  string           `json:"filename"`
	Title     string           `json:"title"`
	Pages     int              `json:"pages"`
	Mode      Mode             `json:"mode"`
	Summary   string           `json:"summary"`
	Sentences []string         `json:"sentences"`
	Sections  map[string][]int `json:"sections"`
	CreatedAt time.Time        `json:"created_at"`
}

func (s *Session) Snapshot() Snapshot {
	sentences := s.Summary.Sentences
	if sentences == nil {
		sentences = []string{}
	}
	sections := s.Sections
	if sections == nil {
		sections = map[string][]int{}
	}
	return Snapshot{
		ID:        s.ID,
		Filename:  s.Filename,
		Title:     s.Document.Title,
		Pages:     len(s.Document.Pages),
		Mode:      s.Mode,
		Summary:   s.Summary.Text(),
		Sentences: sentences,
		Sections:  sections,
		CreatedAt: s.CreatedAt,
	}
}

// Store is a size-bounded in-memory session registry with TTL eviction.
type Store struct {
	cache *lru.LRU[string, *Session]
}

func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = 64
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{cache: lru.NewLRU[string, *Session](size, nil, ttl)}
}

func (s *Store) Put(sess *Session) {
	s.cache.Add(sess.ID, sess)
}

// Get returns the session or nil when it is unknown or expired.
func (s *Store) Get(id string) *Session {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil
	}
	return sess
}

func (s *Store) Len() int {
	return s.cache.Len()
}
