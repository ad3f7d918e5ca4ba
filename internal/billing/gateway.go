// AngelaMos | 2026
// gateway.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/carterperez-dev/coinvoice/internal/config"
	"github.com/carterperez-dev/coinvoice/internal/core"
)

// ErrPaymentDeclined is returned when the processor rejects an otherwise
// valid card.
var ErrPaymentDeclined = errors.New("payment declined")

var (
	cardDigitsRe = regexp.MustCompile(`^\d{16}$`)
	cardExpiryRe = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cardCVVRe    = regexp.MustCompile(`^\d{3}$`)
)

// Card holds the raw payment details submitted at checkout. Nothing here
// is ever persisted.
type Card struct {
	Number     string
	Expiry     string
	CVV        string
	HolderName string
}

// Validate checks card shape only. The number may contain spaces; after
// stripping them it must be exactly 16 digits.
func (c Card) Validate() error {
	number := strings.ReplaceAll(c.Number, " ", "")
	if !cardDigitsRe.MatchString(number) {
		return fmt.Errorf("card number must be 16 digits: %w", core.ErrInvalidInput)
	}
	if !cardExpiryRe.MatchString(c.Expiry) {
		return fmt.Errorf("expiry must be in MM/YY format: %w", core.ErrInvalidInput)
	}
	if !cardCVVRe.MatchString(c.CVV) {
		return fmt.Errorf("cvv must be 3 digits: %w", core.ErrInvalidInput)
	}
	if strings.TrimSpace(c.HolderName) == "" {
		return fmt.Errorf("cardholder name is required: %w", core.ErrInvalidInput)
	}
	return nil
}

// Gateway charges a card. Implementations must validate before charging
// and must respect context cancellation while the charge is in flight.
type Gateway interface {
	Charge(ctx context.Context, card Card) error
}

// SimulatedGateway approves a configurable fraction of valid charges
// after a fixed processing delay. No money moves anywhere.
type SimulatedGateway struct {
	successRate float64
	delay       time.Duration
	random      func() float64
}

func NewSimulatedGateway(cfg config.BillingConfig) *SimulatedGateway {
	return &SimulatedGateway{
		successRate: cfg.SuccessRate,
		delay:       cfg.ProcessingDelay,
		random:      rand.Float64,
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, card Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if g.random() >= g.successRate {
		return ErrPaymentDeclined
	}
	return nil
}
