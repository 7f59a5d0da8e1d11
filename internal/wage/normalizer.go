package wage

import (
	"fmt"

	"github.com/crewlinkhq/crewlink/internal/models"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
)

// DefaultHoursPerWorkday is the business constant used to scale hourly wages
// to a daily figure. The workday length is deployment configuration, not a
// derived value; override it with WithHoursPerWorkday.
const DefaultHoursPerWorkday = 8.0

// Input is a wage offer as entered by a company.
type Input struct {
	PaymentType models.PaymentType
	Amount      float64
	// DurationDays is only meaningful for fixed-total offers. Zero means
	// unspecified and falls back to a single day.
	DurationDays int
}

// Breakdown is the canonical wage triple used for display, invitation terms
// and payout. DailyWage is the comparable figure across payment types.
type Breakdown struct {
	DailyWage    float64         `json:"daily_wage"`
	OriginalWage float64         `json:"original_wage"`
	Unit         models.WageUnit `json:"wage_unit"`
}

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithHoursPerWorkday overrides the workday length used for hourly offers.
func WithHoursPerWorkday(hours float64) Option {
	return func(n *Normalizer) {
		if hours > 0 {
			n.hoursPerWorkday = hours
		}
	}
}

// Normalizer converts hourly, daily and fixed-total wage offers into the
// canonical breakdown. Normalize is a total, side-effect-free function:
// identical inputs always produce identical outputs, which is what makes
// invitation wage snapshots trustworthy.
type Normalizer struct {
	hoursPerWorkday float64
}

// NewNormalizer constructs a Normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{hoursPerWorkday: DefaultHoursPerWorkday}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize validates the offer and produces the canonical wage breakdown.
func (n *Normalizer) Normalize(in Input) (Breakdown, error) {
	if in.Amount <= 0 {
		return Breakdown{}, apperrors.NewValidation("amount", "amount must be a positive number")
	}

	switch in.PaymentType {
	case models.PaymentHourly:
		return Breakdown{
			DailyWage:    in.Amount * n.hoursPerWorkday,
			OriginalWage: in.Amount,
			Unit:         models.WageUnitHour,
		}, nil

	case models.PaymentDaily:
		return Breakdown{
			DailyWage:    in.Amount,
			OriginalWage: in.Amount,
			Unit:         models.WageUnitDay,
		}, nil

	case models.PaymentFixed:
		days := in.DurationDays
		if days == 0 {
			days = 1
		}
		if days < 0 {
			return Breakdown{}, apperrors.NewValidation("duration_days", "duration must be a positive number of days")
		}
		return Breakdown{
			DailyWage:    in.Amount / float64(days),
			OriginalWage: in.Amount,
			Unit:         models.WageUnitTotal,
		}, nil

	default:
		return Breakdown{}, apperrors.NewValidation("payment_type",
			fmt.Sprintf("unknown payment type %q", in.PaymentType))
	}
}
