package model

import "time"

// ActionType identifies the rule that produced an action item.
type ActionType string

const (
	ActionSalaryPending        ActionType = "salaryPending"
	ActionSubscriptionDue      ActionType = "subscriptionDue"
	ActionOverspending         ActionType = "overspending"
	ActionFriendBalance        ActionType = "friendBalance"
	ActionPendingTransfer      ActionType = "pendingTransfer"
	ActionMonthlyFinanceReview ActionType = "monthlyFinanceReview"
	ActionCreditCardUsage      ActionType = "creditCardUsage"
)

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionSalaryPending, ActionSubscriptionDue, ActionOverspending, ActionFriendBalance,
		ActionPendingTransfer, ActionMonthlyFinanceReview, ActionCreditCardUsage:
		return true
	}
	return false
}

// Label is a short human name for the action type.
func (t ActionType) Label() string {
	switch t {
	case ActionSalaryPending:
		return "Salary"
	case ActionSubscriptionDue:
		return "Subscription"
	case ActionOverspending:
		return "Budget"
	case ActionFriendBalance:
		return "Friends"
	case ActionPendingTransfer:
		return "Transfer"
	case ActionMonthlyFinanceReview:
		return "Review"
	case ActionCreditCardUsage:
		return "Credit"
	default:
		return string(t)
	}
}

// Priority orders action items; higher ranks are shown first.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank maps the priority to a sortable integer.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ActionItem is a notification surfaced in the action center.
type ActionItem struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Type            ActionType `json:"type"`
	Priority        Priority   `json:"priority"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	CreatedAt       time.Time  `json:"createdAt"`
	IsDismissed     bool       `json:"isDismissed"`
	RelatedEntityID *string    `json:"relatedEntityId,omitempty"`
}

// Related returns the related entity id or "".
func (a ActionItem) Related() string {
	if a.RelatedEntityID == nil {
		return ""
	}
	return *a.RelatedEntityID
}

// Matches reports whether the item belongs to (userID, type, related).
func (a ActionItem) Matches(userID string, t ActionType, related string) bool {
	return a.UserID == userID && a.Type == t && a.Related() == related
}
