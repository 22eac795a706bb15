package models

import "time"

// IssueSuccessMessage is the message the server returns for an accepted issuance.
const IssueSuccessMessage = "Stock issued successfully"

// DateLayout is the calendar date format used for dateOfIssue.
const DateLayout = "2006-01-02"

// IssuanceRequest is the out-stock form value. It is replaced wholesale on
// every edit and reset to the zero value after each submission.
type IssuanceRequest struct {
	StockName     string `json:"stockName"`
	Quantity      int    `json:"quantity"`
	RecipientName string `json:"recipientName"`
	Purpose       string `json:"purpose"`
	DateOfIssue   string `json:"dateOfIssue"`
}

// IsZero reports whether every field is empty.
func (r IssuanceRequest) IsZero() bool {
	return r == IssuanceRequest{}
}

// IssueDate parses DateOfIssue.
func (r IssuanceRequest) IssueDate() (time.Time, error) {
	return time.Parse(DateLayout, r.DateOfIssue)
}

// IssueResponse is the body returned by POST /api/out.
type IssueResponse struct {
	Message string `json:"message"`
}

// IssuanceOutcome names the terminal state of a submitted issuance.
type IssuanceOutcome string

const (
	OutcomeSucceeded IssuanceOutcome = "succeeded"
	OutcomeFailed    IssuanceOutcome = "failed"
)

// IssuanceRecord is the journal entry written for each issuance that reached
// the server.
type IssuanceRecord struct {
	AttemptID     string          `bson:"attempt_id" json:"attemptId"`
	SessionID     string          `bson:"session_id" json:"sessionId"`
	StockName     string          `bson:"stock_name" json:"stockName"`
	Quantity      int             `bson:"quantity" json:"quantity"`
	RecipientName string          `bson:"recipient_name" json:"recipientName"`
	Purpose       string          `bson:"purpose" json:"purpose"`
	DateOfIssue   string          `bson:"date_of_issue" json:"dateOfIssue"`
	Outcome       IssuanceOutcome `bson:"outcome" json:"outcome"`
	ErrorKind     string          `bson:"error_kind,omitempty" json:"errorKind,omitempty"`
	Reason        string          `bson:"reason,omitempty" json:"reason,omitempty"`
	RecordedAt    time.Time       `bson:"recorded_at" json:"recordedAt"`
}
