package order

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("order not found")

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a known order status. Any known status may
// transition to any other; there is no transition graph.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         string    `json:"id"`
	Customer   string    `json:"customer"`
	TotalCents int64     `json:"total_cents"`
	Status     Status    `json:"status"`
	Date       time.Time `json:"date"`
}

type Store interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, bool, error)
	Create(ctx context.Context, o Order) error
	SetStatus(ctx context.Context, id string, status Status) (Order, error)
	Ping(ctx context.Context) error
}
