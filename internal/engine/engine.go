package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pssnndl/Recolorization/internal/imaging"
	"github.com/pssnndl/Recolorization/internal/intent"
	"github.com/pssnndl/Recolorization/internal/palette"
	"github.com/pssnndl/Recolorization/internal/session"
	"github.com/pssnndl/Recolorization/pkg/models"
)

// LLM is the language-model gateway slice the engine needs: structured
// completion for palette generation and free-form chat for filler.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, system string, history []models.Message) (string, error)
}

// Recolorer runs model inference on an image/palette pair.
type Recolorer interface {
	Recolor(ctx context.Context, asset *models.ImageAsset, p models.Palette) ([]byte, error)
}

// PaletteFetcher pulls a palette from the external color API. It cannot
// fail; bad responses degrade to a built-in default.
type PaletteFetcher interface {
	Fetch(ctx context.Context, seed []models.Color) models.Palette
}

// Config assembles an Engine. Store is required; a nil LLM or Recolorer
// degrades the corresponding features with user-facing messages instead of
// faults.
type Config struct {
	Store     session.Store
	LLM       LLM
	Recolorer Recolorer
	Fetcher   PaletteFetcher
	Validator *imaging.Validator
	Slots     int
	Logger    *log.Logger
}

// Engine orchestrates turns. Turns for the same session are serialized;
// turns for different sessions run independently.
type Engine struct {
	store     session.Store
	llm       LLM
	recolorer Recolorer
	fetcher   PaletteFetcher
	validator *imaging.Validator
	generator *palette.Generator
	slots     int
	logger    *log.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// ErrUnknownSession reports an operation against a session that does not
// exist in the store.
var ErrUnknownSession = errors.New("unknown session")

// ErrNoSuchCandidate reports a candidate index outside the stored set.
var ErrNoSuchCandidate = errors.New("no such palette candidate")

// New creates an Engine from the config, filling unset collaborators with
// defaults where one exists.
func New(cfg Config) *Engine {
	if cfg.Validator == nil {
		cfg.Validator = imaging.NewValidator(imaging.Config{})
	}
	if cfg.Slots <= 0 {
		cfg.Slots = palette.Slots
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = palette.NewExternalClient("", 0)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	var completer palette.Completer
	if cfg.LLM != nil {
		completer = cfg.LLM
	}
	return &Engine{
		store:     cfg.Store,
		llm:       cfg.LLM,
		recolorer: cfg.Recolorer,
		fetcher:   cfg.Fetcher,
		validator: cfg.Validator,
		generator: palette.NewGenerator(completer, cfg.Slots),
		slots:     cfg.Slots,
		logger:    cfg.Logger,
		locks:     make(map[string]*sessionLock),
	}
}

// TurnRequest is one inbound user turn.
type TurnRequest struct {
	SessionID string
	Message   string
	// Image holds raw upload bytes when the turn carries an attachment.
	Image []byte
}

// TurnReply is the composed outcome of one turn.
type TurnReply struct {
	SessionID string
	Message   string
	Intents   []models.Intent
	// Result holds the recolored image bytes when this turn recolored.
	Result  []byte
	Session *models.Session
}

// sessionLock serializes mutations for one session. Entries are
// reference-counted so the lock map shrinks back as sessions go idle.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// acquireLock blocks until the caller holds the session's mutex.
func (e *Engine) acquireLock(id string) *sessionLock {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sessionLock{}
		e.locks[id] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return l
}

// releaseLock unlocks the session's mutex and evicts the entry once no
// other caller is waiting on it.
func (e *Engine) releaseLock(id string, l *sessionLock) {
	l.mu.Unlock()

	e.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, id)
	}
	e.mu.Unlock()
}

// transition records entry into a turn state.
func (e *Engine) transition(sessionID string, st TurnState) {
	e.logger.Debug("turn state", "session", sessionID, "state", st)
}

// HandleTurn drives one turn through the state machine and persists the
// updated session. It returns an error only for infrastructure faults
// (store failures); every branch or gateway failure becomes reply text.
func (e *Engine) HandleTurn(ctx context.Context, req TurnRequest) (*TurnReply, error) {
	s, err := e.loadOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	lock := e.acquireLock(s.ID)
	defer e.releaseLock(s.ID, lock)

	// The lock may have been acquired after another turn persisted; reload
	// so this turn sees its writes.
	if fresh, err := e.store.Get(ctx, s.ID); err == nil && fresh != nil {
		s = fresh
	}

	s.Append(models.Message{
		Role:      models.RoleUser,
		Text:      req.Message,
		HasImage:  len(req.Image) > 0,
		Timestamp: time.Now().UTC(),
	})

	e.transition(s.ID, StateClassifying)
	intents := intent.Classify(req.Message, len(req.Image) > 0)
	e.logger.Debug("turn classified", "session", s.ID, "intents", intents)

	e.transition(s.ID, StateDispatching)
	outcomes := e.dispatch(ctx, s, intents, req)

	// dispatch blocks on the join barrier internally; all outcomes are in.
	e.transition(s.ID, StateAwaitingBranches)

	readyBefore := CheckReady(s).Ready
	for _, o := range outcomes {
		if o.Err == nil {
			applyDelta(s, o.Delta)
		}
	}

	e.transition(s.ID, StateJoining)
	readiness := CheckReady(s)
	wantRecolor := models.HasIntent(intents, models.IntentRequestRecolor) ||
		s.PendingRecolor ||
		(readiness.Ready && !readyBefore)

	var result []byte
	var joinPrompt string
	if wantRecolor {
		if readiness.Ready {
			e.transition(s.ID, StateRecoloring)
			out, bytes := e.runRecolorNode(ctx, s)
			outcomes = append(outcomes, out)
			if out.Err == nil {
				result = bytes
				s.RecolorCount++
				s.PendingRecolor = false
			} else {
				s.PendingRecolor = true
			}
		} else {
			e.transition(s.ID, StateAwaitingInput)
			joinPrompt = missingPrompt(readiness)
			s.PendingRecolor = true
		}
	} else if !readiness.Ready && turnTouchedRecolorInputs(outcomes) {
		e.transition(s.ID, StateAwaitingInput)
		joinPrompt = missingPrompt(readiness)
	}

	e.transition(s.ID, StateResponding)
	reply := composeReply(outcomes, joinPrompt)

	s.Append(models.Message{
		Role:      models.RoleAssistant,
		Text:      reply,
		Timestamp: time.Now().UTC(),
	})
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", s.ID, err)
	}

	e.logger.Info("turn complete", "session", s.ID, "state", StateDone,
		"version", s.Version, "recolored", result != nil)

	return &TurnReply{
		SessionID: s.ID,
		Message:   reply,
		Intents:   intents,
		Result:    result,
		Session:   s,
	}, nil
}

// dispatch fans the turn out to the agent branches and waits for all of
// them. A failed branch never cancels its siblings; failures travel inside
// the outcomes.
func (e *Engine) dispatch(ctx context.Context, s *models.Session, intents []models.Intent, req TurnRequest) []AgentOutcome {
	var branches []func() AgentOutcome

	if models.HasIntent(intents, models.IntentUploadImage) {
		branches = append(branches, func() AgentOutcome {
			return e.runImageNode(req.Image)
		})
	}
	if paletteIntentFired(intents) {
		branches = append(branches, func() AgentOutcome {
			return e.runPaletteNode(ctx, s, intents, req.Message, req.Image)
		})
	}
	if models.HasIntent(intents, models.IntentConverse) {
		branches = append(branches, func() AgentOutcome {
			return e.runChatNode(ctx, s)
		})
	}

	outcomes := make([]AgentOutcome, len(branches))
	var g errgroup.Group
	for i, run := range branches {
		i, run := i, run
		g.Go(func() error {
			outcomes[i] = run()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // branch failures travel inside outcomes
	return outcomes
}

func paletteIntentFired(intents []models.Intent) bool {
	for _, in := range intents {
		switch in {
		case models.IntentSetPaletteHex, models.IntentDescribePalette,
			models.IntentExtractFromImage, models.IntentFetchExternal,
			models.IntentRequestVariation:
			return true
		}
	}
	return false
}

// turnTouchedRecolorInputs reports whether any branch contributed an image
// or palette this turn. Used to decide whether an incomplete pair is worth
// prompting about.
func turnTouchedRecolorInputs(outcomes []AgentOutcome) bool {
	for _, o := range outcomes {
		if o.Err == nil && (o.Delta.Image != nil || o.Delta.Palette != nil) {
			return true
		}
	}
	return false
}

// SelectCandidate promotes a stored palette candidate to the active
// palette. It holds the same per-session lock as HandleTurn, so a selection
// made while a turn is in flight queues behind it instead of clobbering its
// writes.
func (e *Engine) SelectCandidate(ctx context.Context, sessionID string, index int) (*models.Session, error) {
	if sessionID == "" {
		return nil, ErrUnknownSession
	}

	lock := e.acquireLock(sessionID)
	defer e.releaseLock(sessionID, lock)

	s, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if s == nil {
		return nil, ErrUnknownSession
	}
	if index < 0 || index >= len(s.Candidates) {
		return nil, ErrNoSuchCandidate
	}

	chosen := s.Candidates[index].Palette.Clone()
	s.Palette = &chosen
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", sessionID, err)
	}

	e.logger.Info("palette candidate selected", "session", sessionID,
		"index", index, "version", s.Version)
	return s, nil
}

func (e *Engine) loadOrCreate(ctx context.Context, id string) (*models.Session, error) {
	if id != "" {
		s, err := e.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", id, err)
		}
		if s != nil {
			return s, nil
		}
	}
	return models.NewSession(id), nil
}
