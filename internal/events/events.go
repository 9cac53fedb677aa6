// Package events declares the event catalog this process publishes.
// Each type registers itself in Source; the registry builder consumes
// that declaration instead of scanning for types at runtime.
package events

import "github.com/zapan/eventbus/internal/domain/event"

type UserCreated struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (UserCreated) EventName() string { return "user.created" }

type UserDeleted struct {
	UserID string `json:"user_id"`
}

func (UserDeleted) EventName() string { return "user.deleted" }

// AccountUpgraded was renamed from "user.upgraded"; the former routing
// key keeps resolving to it.
type AccountUpgraded struct {
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
}

func (AccountUpgraded) EventName() string { return "account.upgraded" }

func (AccountUpgraded) FormerNames() []string { return []string{"user.upgraded"} }

type OrderPlaced struct {
	OrderID string  `json:"order_id"`
	UserID  string  `json:"user_id"`
	Amount  float64 `json:"amount"`
}

func (OrderPlaced) EventName() string { return "order.placed" }

type OrderRefunded struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

func (OrderRefunded) EventName() string { return "order.refunded" }

// Source returns the catalog in registration order.
func Source() *event.SourceSet {
	return event.NewSource().
		Add(UserCreated{}, "internal/events/events.go").
		Add(UserDeleted{}, "internal/events/events.go").
		Add(AccountUpgraded{}, "internal/events/events.go").
		Add(OrderPlaced{}, "internal/events/events.go").
		Add(OrderRefunded{}, "internal/events/events.go")
}
