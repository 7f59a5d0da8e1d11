package wage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewlinkhq/crewlink/internal/models"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
)

func TestNormalizeHourly(t *testing.T) {
	n := NewNormalizer()

	out, err := n.Normalize(Input{PaymentType: models.PaymentHourly, Amount: 50})
	require.NoError(t, err)
	require.Equal(t, Breakdown{DailyWage: 400, OriginalWage: 50, Unit: models.WageUnitHour}, out)
}

func TestNormalizeDaily(t *testing.T) {
	n := NewNormalizer()

	out, err := n.Normalize(Input{PaymentType: models.PaymentDaily, Amount: 300})
	require.NoError(t, err)
	require.Equal(t, Breakdown{DailyWage: 300, OriginalWage: 300, Unit: models.WageUnitDay}, out)
}

func TestNormalizeFixed(t *testing.T) {
	n := NewNormalizer()

	out, err := n.Normalize(Input{PaymentType: models.PaymentFixed, Amount: 1000, DurationDays: 5})
	require.NoError(t, err)
	require.Equal(t, Breakdown{DailyWage: 200, OriginalWage: 1000, Unit: models.WageUnitTotal}, out)
}

func TestNormalizeFixedDefaultsToSingleDay(t *testing.T) {
	n := NewNormalizer()

	out, err := n.Normalize(Input{PaymentType: models.PaymentFixed, Amount: 1000})
	require.NoError(t, err)
	require.Equal(t, 1000.0, out.DailyWage)
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	n := NewNormalizer()

	cases := []struct {
		name  string
		input Input
		field string
	}{
		{"zero amount", Input{PaymentType: models.PaymentDaily, Amount: 0}, "amount"},
		{"negative amount", Input{PaymentType: models.PaymentHourly, Amount: -5}, "amount"},
		{"negative duration", Input{PaymentType: models.PaymentFixed, Amount: 100, DurationDays: -2}, "duration_days"},
		{"unknown payment type", Input{PaymentType: "weekly", Amount: 100}, "payment_type"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.input)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
			require.Equal(t, tc.field, apperrors.FromError(err).Details["field"])
		})
	}
}

func TestNormalizeWithCustomWorkday(t *testing.T) {
	n := NewNormalizer(WithHoursPerWorkday(10))

	out, err := n.Normalize(Input{PaymentType: models.PaymentHourly, Amount: 50})
	require.NoError(t, err)
	require.Equal(t, 500.0, out.DailyWage)
}

func TestNormalizeIsReferentiallyTransparent(t *testing.T) {
	n := NewNormalizer()
	in := Input{PaymentType: models.PaymentFixed, Amount: 750, DurationDays: 3}

	first, err := n.Normalize(in)
	require.NoError(t, err)
	second, err := n.Normalize(in)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
