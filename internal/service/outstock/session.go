package outstock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/catalog"
)

const journalTimeout = 10 * time.Second

// Issuer sends an issuance to the inventory server.
type Issuer interface {
	IssueStock(ctx context.Context, req models.IssuanceRequest) (*models.IssueResponse, error)
}

// Journal records issuances that reached the inventory server.
type Journal interface {
	RecordIssuance(ctx context.Context, record models.IssuanceRecord) error
}

// State is the live state of a session's form.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
)

// Outcome is the terminal result of the last submission attempt.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeRejected  Outcome = "rejected"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// NoticeKind classifies the message slot.
type NoticeKind string

const (
	NoticeNone    NoticeKind = ""
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

// Notice is the single user-visible message slot of a session.
type Notice struct {
	Kind NoticeKind `json:"kind,omitempty"`
	Text string     `json:"text,omitempty"`
}

// View is a consistent copy of a session's state.
type View struct {
	SessionID   string                 `json:"sessionId"`
	State       State                  `json:"state"`
	LastOutcome Outcome                `json:"lastOutcome,omitempty"`
	Stocks      []models.StockItem     `json:"stocks"`
	Form        models.IssuanceRequest `json:"form"`
	Message     Notice                 `json:"message"`
}

// SessionOptions tunes session behaviour.
type SessionOptions struct {
	// DecrementOnIssue applies a local decrement to the catalog after a
	// confirmed issuance.
	DecrementOnIssue bool
}

// Session is one activation of the out-stock form: a catalog snapshot, the
// current form value and the submission state machine.
type Session struct {
	id       string
	catalog  *catalog.Cache
	issuer   Issuer
	journals []Journal
	opts     SessionOptions
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	form     models.IssuanceRequest
	state    State
	outcome  Outcome
	message  Notice
	lastSeen time.Time
}

func newSession(id string, cache *catalog.Cache, issuer Issuer, journals []Journal, opts SessionOptions, logger *zap.Logger, now func() time.Time) *Session {
	return &Session{
		id:       id,
		catalog:  cache,
		issuer:   issuer,
		journals: journals,
		opts:     opts,
		logger:   logger.With(zap.String("session_id", id)),
		now:      now,
		state:    StateIdle,
		lastSeen: now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Activate loads the catalog once. A failed load leaves the snapshot empty
// and shows the load failure message; it is not retried.
func (s *Session) Activate(ctx context.Context) error {
	err := s.catalog.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
	if err != nil {
		s.message = Notice{Kind: NoticeError, Text: catalog.LoadFailedMessage}
		return err
	}
	return nil
}

// Edit replaces the form value.
func (s *Session) Edit(req models.IssuanceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return validationError(ErrSubmissionInFlight, MsgInFlight)
	}
	s.form = req
	s.lastSeen = s.now()
	return nil
}

// Submit validates the current form against the catalog snapshot and, when
// valid, sends it to the inventory server. Every attempt ends with the form
// reset to empty and the outcome shown in the message slot.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return validationError(ErrSubmissionInFlight, MsgInFlight)
	}

	s.message = Notice{}
	s.state = StateValidating
	s.lastSeen = s.now()
	req := s.form

	if err := s.validate(req); err != nil {
		s.finishLocked(OutcomeRejected, Notice{Kind: NoticeError, Text: err.Message})
		s.mu.Unlock()
		s.logger.Info("issuance rejected",
			zap.String("stock_name", req.StockName),
			zap.Int("quantity", req.Quantity),
			zap.Error(err))
		return err
	}

	s.state = StateSubmitting
	s.mu.Unlock()

	attemptID := uuid.NewString()
	resp, sendErr := s.issuer.IssueStock(ctx, req)
	err := confirm(resp, sendErr)

	s.mu.Lock()
	if err != nil {
		s.finishLocked(OutcomeFailed, Notice{Kind: NoticeError, Text: err.Message})
	} else {
		if s.opts.DecrementOnIssue {
			s.catalog.ApplyIssued(req.StockName, req.Quantity)
		}
		s.finishLocked(OutcomeSucceeded, Notice{Kind: NoticeSuccess, Text: resp.Message})
	}
	s.mu.Unlock()

	record := models.IssuanceRecord{
		AttemptID:     attemptID,
		SessionID:     s.id,
		StockName:     req.StockName,
		Quantity:      req.Quantity,
		RecipientName: req.RecipientName,
		Purpose:       req.Purpose,
		DateOfIssue:   req.DateOfIssue,
		Outcome:       models.OutcomeSucceeded,
		RecordedAt:    s.now().UTC(),
	}

	if err != nil {
		record.Outcome = models.OutcomeFailed
		record.ErrorKind = string(err.Kind)
		record.Reason = err.Error()
		s.logger.Warn("issuance failed",
			zap.String("attempt_id", attemptID),
			zap.String("stock_name", req.StockName),
			zap.String("kind", string(err.Kind)),
			zap.Error(err))
	} else {
		s.logger.Info("stock issued",
			zap.String("attempt_id", attemptID),
			zap.String("stock_name", req.StockName),
			zap.Int("quantity", req.Quantity))
	}

	s.record(ctx, record)

	if err != nil {
		return err
	}
	return nil
}

// View returns a copy of the session state.
func (s *Session) View() View {
	stocks := s.catalog.Snapshot()
	if stocks == nil {
		stocks = []models.StockItem{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()

	return View{
		SessionID:   s.id,
		State:       s.state,
		LastOutcome: s.outcome,
		Stocks:      stocks,
		Form:        s.form,
		Message:     s.message,
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateSubmitting
}

// validate runs the local checks in order: catalog lookup, availability,
// then the fields the form marks as required.
func (s *Session) validate(req models.IssuanceRequest) *Error {
	item, ok := s.catalog.Lookup(req.StockName)
	if !ok {
		return validationError(ErrStockNotFound, MsgStockNotFound)
	}

	if req.Quantity > item.Quantity {
		return validationError(ErrInsufficientStock, MsgInsufficientStock)
	}

	switch {
	case req.Quantity <= 0:
		return validationError(ErrInvalidRequest, "Quantity must be greater than 0")
	case strings.TrimSpace(req.RecipientName) == "":
		return validationError(ErrInvalidRequest, "Recipient name is required")
	case strings.TrimSpace(req.Purpose) == "":
		return validationError(ErrInvalidRequest, "Purpose is required")
	case req.DateOfIssue == "":
		return validationError(ErrInvalidRequest, "Date of issue is required")
	}

	if _, err := req.IssueDate(); err != nil {
		return validationError(ErrInvalidRequest, fmt.Sprintf("Date of issue must use the %s format", models.DateLayout))
	}

	return nil
}

func (s *Session) finishLocked(outcome Outcome, notice Notice) {
	s.outcome = outcome
	s.message = notice
	s.form = models.IssuanceRequest{}
	s.state = StateIdle
	s.lastSeen = s.now()
}

func (s *Session) record(ctx context.Context, record models.IssuanceRecord) {
	if len(s.journals) == 0 {
		return
	}

	journalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	for _, j := range s.journals {
		if err := j.RecordIssuance(journalCtx, record); err != nil {
			s.logger.Error("failed to journal issuance", zap.String("attempt_id", record.AttemptID), zap.Error(err))
		}
	}
}

// confirm maps the server exchange to nil or a tagged submit error. Only the
// exact success message counts as success.
func confirm(resp *models.IssueResponse, err error) *Error {
	if err != nil {
		return submitError(err)
	}
	if resp == nil {
		return submitError(errors.New("empty response"))
	}
	if resp.Message != models.IssueSuccessMessage {
		return submitError(fmt.Errorf("unexpected response message %q", resp.Message))
	}
	return nil
}
