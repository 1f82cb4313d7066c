package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	UserCreated = "user.created"

	SalaryUpdated       = "salary.updated"
	ExpenseAdded        = "expense.added"
	ExpenseUpdated      = "expense.updated"
	ExpenseDeleted      = "expense.deleted"
	IncomeAdded         = "income.added"
	IncomeDeleted       = "income.deleted"
	GoalAdded           = "goal.added"
	GoalUpdated         = "goal.updated"
	GoalDeleted         = "goal.deleted"
	GoalContributed     = "goal.contributed"
	SettlementCompleted = "settlement.completed"
)

// Stream names
const (
	UserEventsStream    = "user.events"
	ProfileEventsStream = "profile.events"
)

// Event is the envelope written to a stream. Data stays raw on the consumer
// side so each handler decodes only the payload it expects.
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

type UserCreatedEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileChangedEvent is published after every successful profile save.
// EntityID names the expense, income entry or goal touched, when there is one.
type ProfileChangedEvent struct {
	UserID   string           `json:"userId"`
	EntityID string           `json:"entityId,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Version  int64            `json:"version"`
}
