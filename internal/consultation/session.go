package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"telemed-ai/internal/history"
)

// HistorySource yields the patient's most recent medical-history entry.
type HistorySource interface {
	Latest(ctx context.Context, patientID uuid.UUID) (*history.Entry, error)
}

type RecordSaver interface {
	Save(ctx context.Context, rec *Record) error
}

// SessionContext is who is consulting and in which language.
type SessionContext struct {
	PatientID uuid.UUID
	Language  Language
}

// Session drives one consultation transcript. At most one relay call is in
// flight at a time.
type Session struct {
	sc      SessionContext
	relay   Relay
	history HistorySource
	store   RecordSaver

	mu      sync.Mutex
	busy    bool
	turns   []Message
	pending sync.WaitGroup

	now         func() time.Time
	saveTimeout time.Duration
}

// NewSession builds a session. history and store may be nil.
func NewSession(sc SessionContext, relay Relay, hist HistorySource, store RecordSaver) *Session {
	if !sc.Language.Valid() {
		sc.Language = English
	}
	return &Session{
		sc:          sc,
		relay:       relay,
		history:     hist,
		store:       store,
		now:         time.Now,
		saveTimeout: 10 * time.Second,
	}
}

// Submit sends query to the relay and returns the assistant's reply.
// Patient-facing failures are returned as *Notice; a concurrent call
// returns ErrBusy.
func (s *Session) Submit(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", validationNotice(s.sc.Language)
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.busy = true
	s.turns = append(s.turns, Message{Role: RoleUser, Content: query, Timestamp: s.now()})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	reply, err := s.relay.Consult(ctx, Request{
		Query:          query,
		Language:       s.sc.Language,
		PatientHistory: s.latestHistory(ctx),
	})
	if err != nil {
		log.Printf("Consultation error: %v", err)
		var relayErr *RelayError
		if errors.As(err, &relayErr) {
			return "", noticeFor(s.sc.Language, relayErr.Category, relayErr.Message)
		}
		return "", noticeFor(s.sc.Language, CategoryGeneric, err.Error())
	}

	s.mu.Lock()
	s.turns = append(s.turns, Message{Role: RoleAssistant, Content: reply, Timestamp: s.now()})
	s.mu.Unlock()

	s.persist(query, reply)
	return reply, nil
}

// latestHistory is best-effort: a missing or unreadable record yields nil.
func (s *Session) latestHistory(ctx context.Context) json.RawMessage {
	if s.history == nil {
		return nil
	}
	entry, err := s.history.Latest(ctx, s.sc.PatientID)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			log.Printf("Could not load medical history for %s: %v", s.sc.PatientID, err)
		}
		return nil
	}
	if entry == nil {
		return nil
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return nil
	}
	return raw
}

func (s *Session) persist(query, reply string) {
	if s.store == nil {
		return
	}
	rec := &Record{
		PatientID: s.sc.PatientID,
		Type:      TypeAI,
		Query:     query,
		Response:  reply,
		Language:  s.sc.Language,
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		defer cancel()
		if err := s.store.Save(ctx, rec); err != nil {
			log.Printf("Failed to save consultation: %v", err)
		}
	}()
}

// Wait blocks until every pending consultation record has been written.
func (s *Session) Wait() {
	s.pending.Wait()
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Transcript returns a copy of the turns so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) Language() Language {
	return s.sc.Language
}
