package outstock_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/catalog"
	"github.com/mamadbah2/stockdesk/internal/service/outstock"
	"github.com/mamadbah2/stockdesk/pkg/clients/stockapi"
)

type fakeFetcher struct {
	items []models.StockItem
	err   error
	calls int
}

func (f *fakeFetcher) ListStocks(context.Context) ([]models.StockItem, error) {
	f.calls++
	return f.items, f.err
}

type fakeIssuer struct {
	mu      sync.Mutex
	calls   []models.IssuanceRequest
	resp    *models.IssueResponse
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeIssuer) IssueStock(_ context.Context, req models.IssuanceRequest) (*models.IssueResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.resp, f.err
}

func (f *fakeIssuer) Calls() []models.IssuanceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.IssuanceRequest(nil), f.calls...)
}

type fakeJournal struct {
	records []models.IssuanceRecord
	err     error
}

func (f *fakeJournal) RecordIssuance(_ context.Context, record models.IssuanceRecord) error {
	f.records = append(f.records, record)
	return f.err
}

func okIssuer() *fakeIssuer {
	return &fakeIssuer{resp: &models.IssueResponse{Message: models.IssueSuccessMessage}}
}

func boltSnapshot() *fakeFetcher {
	return &fakeFetcher{items: []models.StockItem{{StockName: "Bolt", Quantity: 10}}}
}

func validRequest(stock string, qty int) models.IssuanceRequest {
	return models.IssuanceRequest{
		StockName:     stock,
		Quantity:      qty,
		RecipientName: "Workshop B",
		Purpose:       "Assembly line",
		DateOfIssue:   "2026-10-19",
	}
}

func openSession(t *testing.T, fetcher *fakeFetcher, issuer *fakeIssuer, opts outstock.SessionOptions, journals ...outstock.Journal) *outstock.Session {
	t.Helper()
	mgr := outstock.NewSessionManager(fetcher, issuer, journals, opts, nil)
	sess, err := mgr.Open(context.Background())
	require.NotNil(t, sess)
	if fetcher.err == nil {
		require.NoError(t, err)
	}
	return sess
}

func submit(t *testing.T, sess *outstock.Session, req models.IssuanceRequest) error {
	t.Helper()
	require.NoError(t, sess.Edit(req))
	return sess.Submit(context.Background())
}

func TestSubmit_InsufficientStock(t *testing.T) {
	issuer := okIssuer()
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{})

	err := submit(t, sess, validRequest("Bolt", 15))

	require.ErrorIs(t, err, outstock.ErrInsufficientStock)
	assert.Equal(t, outstock.KindValidation, outstock.KindOf(err))
	assert.Empty(t, issuer.Calls())

	view := sess.View()
	assert.Equal(t, outstock.Notice{Kind: outstock.NoticeError, Text: "Cannot issue more stock than available"}, view.Message)
	assert.Equal(t, outstock.OutcomeRejected, view.LastOutcome)
	assert.Equal(t, outstock.StateIdle, view.State)
	assert.True(t, view.Form.IsZero(), "rejections also reset the form")
}

func TestSubmit_Success(t *testing.T) {
	issuer := okIssuer()
	journal := &fakeJournal{}
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{}, journal)

	req := validRequest("Bolt", 5)
	require.NoError(t, submit(t, sess, req))

	assert.Equal(t, []models.IssuanceRequest{req}, issuer.Calls())

	view := sess.View()
	assert.Equal(t, outstock.Notice{Kind: outstock.NoticeSuccess, Text: "Stock issued successfully"}, view.Message)
	assert.Equal(t, outstock.OutcomeSucceeded, view.LastOutcome)
	assert.True(t, view.Form.IsZero())
	assert.Equal(t, 10, view.Stocks[0].Quantity, "snapshot untouched without decrement")

	require.Len(t, journal.records, 1)
	rec := journal.records[0]
	assert.Equal(t, models.OutcomeSucceeded, rec.Outcome)
	assert.Equal(t, sess.ID(), rec.SessionID)
	assert.NotEmpty(t, rec.AttemptID)
	assert.Equal(t, "Bolt", rec.StockName)
	assert.Equal(t, 5, rec.Quantity)
}

func TestSubmit_SuccessDecrementsSnapshot(t *testing.T) {
	issuer := okIssuer()
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{DecrementOnIssue: true})

	require.NoError(t, submit(t, sess, validRequest("Bolt", 6)))
	assert.Equal(t, 4, sess.View().Stocks[0].Quantity)

	err := submit(t, sess, validRequest("Bolt", 6))
	require.ErrorIs(t, err, outstock.ErrInsufficientStock)
	assert.Len(t, issuer.Calls(), 1)
}

func TestSubmit_StockNotFound(t *testing.T) {
	issuer := okIssuer()
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{})

	err := submit(t, sess, validRequest("Nut", 1))

	require.ErrorIs(t, err, outstock.ErrStockNotFound)
	assert.Empty(t, issuer.Calls())
	assert.Equal(t, "Stock not found", sess.View().Message.Text)
}

func TestSubmit_EmptySnapshotAfterLoadFailure(t *testing.T) {
	issuer := okIssuer()
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	sess := openSession(t, fetcher, issuer, outstock.SessionOptions{})

	view := sess.View()
	assert.Empty(t, view.Stocks)
	assert.Equal(t, outstock.Notice{Kind: outstock.NoticeError, Text: catalog.LoadFailedMessage}, view.Message)

	err := submit(t, sess, validRequest("Bolt", 1))
	require.ErrorIs(t, err, outstock.ErrStockNotFound)
	assert.Empty(t, issuer.Calls())
	assert.Equal(t, 1, fetcher.calls, "submit never re-fetches")
}

func TestSubmit_ServerError(t *testing.T) {
	issuer := &fakeIssuer{err: &stockapi.Error{Op: "issue stock", StatusCode: http.StatusInternalServerError}}
	journal := &fakeJournal{}
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{DecrementOnIssue: true}, journal)

	err := submit(t, sess, validRequest("Bolt", 5))

	require.ErrorIs(t, err, outstock.ErrSubmitFailed)
	assert.Equal(t, outstock.KindServer, outstock.KindOf(err))
	assert.Len(t, issuer.Calls(), 1)

	view := sess.View()
	assert.Equal(t, outstock.Notice{Kind: outstock.NoticeError, Text: "Error occurred while processing the request"}, view.Message)
	assert.Equal(t, outstock.OutcomeFailed, view.LastOutcome)
	assert.True(t, view.Form.IsZero())
	assert.Equal(t, 10, view.Stocks[0].Quantity)

	require.Len(t, journal.records, 1)
	assert.Equal(t, models.OutcomeFailed, journal.records[0].Outcome)
	assert.Equal(t, "server", journal.records[0].ErrorKind)
}

func TestSubmit_NetworkError(t *testing.T) {
	cause := &stockapi.Error{Op: "issue stock", Err: stockapi.ErrNoResponse}
	issuer := &fakeIssuer{err: cause}
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{})

	err := submit(t, sess, validRequest("Bolt", 5))

	require.ErrorIs(t, err, outstock.ErrSubmitFailed)
	assert.ErrorIs(t, err, stockapi.ErrNoResponse)
	assert.Equal(t, outstock.KindNetwork, outstock.KindOf(err))
	assert.Equal(t, "Error occurred while processing the request", sess.View().Message.Text)
}

func TestSubmit_UnexpectedMessageIsFailure(t *testing.T) {
	issuer := &fakeIssuer{resp: &models.IssueResponse{Message: "queued"}}
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{})

	err := submit(t, sess, validRequest("Bolt", 5))

	require.ErrorIs(t, err, outstock.ErrSubmitFailed)
	assert.Equal(t, outstock.KindServer, outstock.KindOf(err))
	assert.Equal(t, outstock.OutcomeFailed, sess.View().LastOutcome)
}

func TestSubmit_ValidationOrder(t *testing.T) {
	tests := []struct {
		name string
		req  models.IssuanceRequest
		want error
		msg  string
	}{
		{name: "missing stock beats empty fields", req: models.IssuanceRequest{StockName: "Nut"}, want: outstock.ErrStockNotFound, msg: "Stock not found"},
		{name: "excess beats empty fields", req: models.IssuanceRequest{StockName: "Bolt", Quantity: 11}, want: outstock.ErrInsufficientStock, msg: "Cannot issue more stock than available"},
		{name: "zero quantity", req: validRequest("Bolt", 0), want: outstock.ErrInvalidRequest, msg: "Quantity must be greater than 0"},
		{name: "negative quantity", req: validRequest("Bolt", -3), want: outstock.ErrInvalidRequest, msg: "Quantity must be greater than 0"},
		{name: "blank recipient", req: func() models.IssuanceRequest { r := validRequest("Bolt", 1); r.RecipientName = "  "; return r }(), want: outstock.ErrInvalidRequest, msg: "Recipient name is required"},
		{name: "blank purpose", req: func() models.IssuanceRequest { r := validRequest("Bolt", 1); r.Purpose = ""; return r }(), want: outstock.ErrInvalidRequest, msg: "Purpose is required"},
		{name: "missing date", req: func() models.IssuanceRequest { r := validRequest("Bolt", 1); r.DateOfIssue = ""; return r }(), want: outstock.ErrInvalidRequest, msg: "Date of issue is required"},
		{name: "bad date", req: func() models.IssuanceRequest { r := validRequest("Bolt", 1); r.DateOfIssue = "19/10/2026"; return r }(), want: outstock.ErrInvalidRequest, msg: "Date of issue must use the 2006-01-02 format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := okIssuer()
			sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{})

			err := submit(t, sess, tt.req)

			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, issuer.Calls())
			assert.Equal(t, tt.msg, sess.View().Message.Text)
			assert.True(t, sess.View().Form.IsZero())
		})
	}
}

func TestSubmit_QuantityBoundaries(t *testing.T) {
	for qty := 1; qty <= 12; qty++ {
		issuer := okIssuer()
		sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{})

		err := submit(t, sess, validRequest("Bolt", qty))
		if qty <= 10 {
			require.NoError(t, err, "qty %d", qty)
			require.Len(t, issuer.Calls(), 1, "qty %d", qty)
			assert.Equal(t, validRequest("Bolt", qty), issuer.Calls()[0])
		} else {
			require.ErrorIs(t, err, outstock.ErrInsufficientStock, "qty %d", qty)
			assert.Empty(t, issuer.Calls(), "qty %d", qty)
		}
	}
}

func TestSubmit_ClearsPreviousMessage(t *testing.T) {
	issuer := okIssuer()
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{})

	require.Error(t, submit(t, sess, validRequest("Nut", 1)))
	require.NoError(t, submit(t, sess, validRequest("Bolt", 1)))

	assert.Equal(t, outstock.NoticeSuccess, sess.View().Message.Kind)
}

func TestSubmit_InFlightGuard(t *testing.T) {
	issuer := okIssuer()
	issuer.started = make(chan struct{})
	issuer.release = make(chan struct{})
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{})
	require.NoError(t, sess.Edit(validRequest("Bolt", 2)))

	done := make(chan error, 1)
	go func() { done <- sess.Submit(context.Background()) }()

	select {
	case <-issuer.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never reached the issuer")
	}

	assert.Equal(t, outstock.StateSubmitting, sess.View().State)

	err := sess.Submit(context.Background())
	require.ErrorIs(t, err, outstock.ErrSubmissionInFlight)
	require.ErrorIs(t, sess.Edit(validRequest("Bolt", 1)), outstock.ErrSubmissionInFlight)

	close(issuer.release)
	require.NoError(t, <-done)

	assert.Len(t, issuer.Calls(), 1)
	view := sess.View()
	assert.Equal(t, outstock.StateIdle, view.State)
	assert.Equal(t, outstock.OutcomeSucceeded, view.LastOutcome)
}

func TestSubmit_JournalFailureDoesNotChangeOutcome(t *testing.T) {
	issuer := okIssuer()
	journal := &fakeJournal{err: errors.New("mongo down")}
	sess := openSession(t, boltSnapshot(), issuer, outstock.SessionOptions{}, journal)

	require.NoError(t, submit(t, sess, validRequest("Bolt", 1)))
	assert.Len(t, journal.records, 1)
	assert.Equal(t, outstock.NoticeSuccess, sess.View().Message.Kind)
}

func TestSubmit_RejectionsAreNotJournaled(t *testing.T) {
	journal := &fakeJournal{}
	sess := openSession(t, boltSnapshot(), okIssuer(), outstock.SessionOptions{}, journal)

	require.Error(t, submit(t, sess, validRequest("Bolt", 50)))
	assert.Empty(t, journal.records)
}
