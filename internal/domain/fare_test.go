package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fareReq(distanceKM float64, hour int) FareRequest {
	return FareRequest{
		DistanceKM:  &distanceKM,
		RequestTime: time.Date(2025, 3, 10, hour, 30, 0, 0, time.UTC),
		Incentives:  DefaultIncentiveMetrics(),
	}
}

func TestRecommendFare_OffPeakMorning(t *testing.T) {
	// 5 km a las 09:30: multiplicadores neutros.
	// raw = (2.25 + 5*0.95) * 1.00 * 1.00 * 1.0 = 7.00
	rec, err := RecommendFare(fareReq(5.0, 9))

	require.NoError(t, err)
	assert.Equal(t, 7.00, rec.BaseFare)
	assert.Equal(t, 10.50, rec.MaxBidLimit)
	assert.Equal(t, "v1", rec.Breakdown.PricingVersion)
	assert.Equal(t, DistanceSourceInput, rec.Breakdown.DistanceSource)
	assert.Equal(t, 1.00, rec.Breakdown.TimeMultiplier)
	assert.Equal(t, 1.00, rec.Breakdown.PeakMultiplier)
	assert.Equal(t, 1.0, rec.Breakdown.IncentiveMultiplier)

	// 5/28*60 = 10.71 → ceil 11 + 8 buffer = 19
	assert.Equal(t, 19, rec.ETAEstimateMinutes)
}

func TestRecommendFare_LunchPeak(t *testing.T) {
	// 5 km a las 12:30: time 1.08, peak 1.12.
	// raw = 7.00 * 1.08 * 1.12 = 8.4672 → 8.47
	rec, err := RecommendFare(fareReq(5.0, 12))

	require.NoError(t, err)
	assert.Equal(t, 8.47, rec.BaseFare)
	assert.Equal(t, 1.08, rec.Breakdown.TimeMultiplier)
	assert.Equal(t, 1.12, rec.Breakdown.PeakMultiplier)

	// velocidad en pico: 28*0.90 = 25.2 → 5/25.2*60 = 11.9 → ceil 12 + 8 = 20
	assert.Equal(t, 20, rec.ETAEstimateMinutes)
}

func TestRecommendFare_ClampsToFloorAndCeiling(t *testing.T) {
	// 1 km: raw = 3.20, por debajo del suelo 3.25.
	low, err := RecommendFare(fareReq(1.0, 9))
	require.NoError(t, err)
	assert.Equal(t, 3.25, low.BaseFare)

	// 50 km: raw = 49.75, por encima del techo 35.00.
	high, err := RecommendFare(fareReq(50.0, 9))
	require.NoError(t, err)
	assert.Equal(t, 35.00, high.BaseFare)
	assert.Equal(t, 52.50, high.MaxBidLimit)
}

func TestRecommendFare_Deterministic(t *testing.T) {
	req := fareReq(7.3, 19)
	a, err := RecommendFare(req)
	require.NoError(t, err)
	b, err := RecommendFare(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRecommendFare_MissingDistanceAndCoords(t *testing.T) {
	_, err := RecommendFare(FareRequest{
		UserLocation:       Location{Address: "123 B St"},
		RestaurantLocation: Location{Address: "456 C St"},
	})
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestRecommendFare_NonPositiveDistance(t *testing.T) {
	zero := 0.0
	_, err := RecommendFare(FareRequest{DistanceKM: &zero})
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestRecommendFare_HaversineFallback(t *testing.T) {
	lat1, lon1 := 38.5449, -121.7405
	lat2, lon2 := 38.5382, -121.7617
	rec, err := RecommendFare(FareRequest{
		RestaurantLocation: Location{Latitude: &lat1, Longitude: &lon1},
		UserLocation:       Location{Latitude: &lat2, Longitude: &lon2},
		RequestTime:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Incentives:         DefaultIncentiveMetrics(),
	})
	require.NoError(t, err)
	assert.Equal(t, DistanceSourceHaversine, rec.Breakdown.DistanceSource)
	assert.Greater(t, rec.Breakdown.DistanceKM, 0.0)
	assert.GreaterOrEqual(t, rec.BaseFare, MinBaseFare)
}

func TestBidWindow(t *testing.T) {
	min, max := BidWindow(10.0)
	assert.Equal(t, 10.00, min)
	assert.Equal(t, 15.00, max)

	min, max = BidWindow(3.25)
	assert.Equal(t, 3.25, min)
	assert.InDelta(t, 4.88, max, 0.005) // 4.875 half-to-even

	min, max = BidWindow(35.0)
	assert.Equal(t, 35.00, min)
	assert.Equal(t, 52.50, max)
}

func TestTimeOfDayMultiplier_Boundaries(t *testing.T) {
	cases := map[int]float64{
		0: 1.12, 5: 1.12,
		6: 1.00, 10: 1.00,
		11: 1.08, 13: 1.08,
		14: 0.97, 16: 0.97,
		17: 1.12, 21: 1.12,
		22: 1.05, 23: 1.05,
	}
	for hour, want := range cases {
		assert.Equal(t, want, TimeOfDayMultiplier(hour), "hour %d", hour)
	}
}

func TestPeakHourMultiplier_Boundaries(t *testing.T) {
	cases := map[int]float64{
		10: 1.00,
		11: 1.12, 13: 1.12,
		14: 1.00, 17: 1.00,
		18: 1.12, 21: 1.12,
		22: 1.00,
	}
	for hour, want := range cases {
		assert.Equal(t, want, PeakHourMultiplier(hour), "hour %d", hour)
	}
}

func TestIncentiveMultiplier(t *testing.T) {
	// Neutro: demand == supply, sin clima.
	assert.Equal(t, 1.0, IncentiveMultiplier(DefaultIncentiveMetrics()))

	// Demanda alta: ratio 2.0 → presión clamp(0.25) → 1.25; tormenta +0.15.
	storm := IncentiveMultiplier(IncentiveMetrics{DemandIndex: 2.0, SupplyIndex: 1.0, WeatherSeverity: 1.0})
	assert.Equal(t, 1.40, storm)

	// Oferta sobrada: ratio 0.25 → presión -0.1875 → 0.8125 → 0.812 half-to-even.
	slack := IncentiveMultiplier(IncentiveMetrics{DemandIndex: 0.5, SupplyIndex: 2.0})
	assert.Equal(t, 0.812, slack)

	// Extremos acotados a [0.80, 1.60].
	floor := IncentiveMultiplier(IncentiveMetrics{DemandIndex: 0.1, SupplyIndex: 2.0})
	assert.GreaterOrEqual(t, floor, 0.80)
	ceiling := IncentiveMultiplier(IncentiveMetrics{DemandIndex: 10.0, SupplyIndex: 0.5, WeatherSeverity: 1.0})
	assert.LessOrEqual(t, ceiling, 1.60)
}

func TestEstimateETAMinutes_Floor(t *testing.T) {
	// Trayecto mínimo: 0.1/28*60 = 0.2 → ceil 1 + 8 = 9 → suelo 10.
	assert.Equal(t, 10, EstimateETAMinutes(0.1, 1.0, 0))
}

func TestHaversineKM(t *testing.T) {
	// Un grado de longitud en el ecuador ≈ 111.19 km.
	assert.InDelta(t, 111.19, HaversineKM(0, 0, 0, 1), 0.05)

	// Simétrica y cero en el mismo punto.
	assert.InDelta(t, HaversineKM(38.54, -121.74, 38.58, -121.49),
		HaversineKM(38.58, -121.49, 38.54, -121.74), 1e-9)
	assert.InDelta(t, 0, HaversineKM(38.54, -121.74, 38.54, -121.74), 1e-9)
}

func TestRound2_HalfToEven(t *testing.T) {
	assert.Equal(t, 2.22, Round2(2.225))
	assert.Equal(t, 2.24, Round2(2.235))
	assert.Equal(t, 10.0, Round2(10.0))
}
