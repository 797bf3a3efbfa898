package orders

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront-records.git/internal/envelope"
)

const (
	DefaultPaymentDelay       = time.Second
	DefaultPaymentFailureRate = 0.1
	MsgPaymentFailed          = "Payment failed. Please try again."
	PaymentStatusCompleted    = "completed"
)

type PaymentInput struct {
	OrderID int     `json:"orderId,omitempty"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method,omitempty"`
}

type Payment struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// SimulatedPayments stands in for a payment gateway: it waits Delay and
// then fails with probability FailureRate.
type SimulatedPayments struct {
	Delay       time.Duration
	FailureRate float64
	Rand        func() float64
	Now         func() time.Time
}

func NewSimulatedPayments(delay time.Duration, failureRate float64) *SimulatedPayments {
	return &SimulatedPayments{Delay: delay, FailureRate: failureRate}
}

func (p *SimulatedPayments) Charge(ctx context.Context, _ PaymentInput) envelope.Result[Payment] {
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return envelope.FromError[Payment](ctx.Err(), "Payment processing failed")
		case <-t.C:
		}
	}

	draw := rand.Float64
	if p.Rand != nil {
		draw = p.Rand
	}
	if draw() <= p.FailureRate {
		return envelope.Fail[Payment](MsgPaymentFailed)
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return envelope.OK(Payment{
		TransactionID: "txn_" + strconv.FormatInt(now().UnixMilli(), 10),
		Status:        PaymentStatusCompleted,
	})
}
