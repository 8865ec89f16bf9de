package domain

// fare.go — cálculo de tarifa base y ventana de pujas (pricing v1).
//
// Estrategia:
//   - Función pura y determinista: misma entrada → misma salida byte a byte.
//   - Distancia: se acepta precalculada o se deriva por haversine.
//   - Todo valor monetario se redondea half-to-even a 2 decimales.

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Pricing knobs for the bidding minimum.
const (
	BasePickupFee = 2.25
	PerKMRate     = 0.95
	MinBaseFare   = 3.25
	MaxBaseFare   = 35.00

	// MaxBidMultiplier caps agent bids relative to the base fare.
	MaxBidMultiplier = 1.5

	PricingVersion = "v1"
)

// Distance sources reported in the fare breakdown.
const (
	DistanceSourceInput     = "input_distance"
	DistanceSourceHaversine = "haversine"
)

// Location is a delivery endpoint. Coordinates are optional when the caller
// provides a precomputed distance.
type Location struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// IncentiveMetrics feed the demand/supply/weather multiplier.
// Demand and supply indexes are expected in [0.5, 2.0], weather in [0, 1].
type IncentiveMetrics struct {
	DemandIndex     float64 `json:"demand_index"`
	SupplyIndex     float64 `json:"supply_index"`
	WeatherSeverity float64 `json:"weather_severity"`
}

// DefaultIncentiveMetrics is neutral demand/supply with clear weather.
func DefaultIncentiveMetrics() IncentiveMetrics {
	return IncentiveMetrics{DemandIndex: 1.0, SupplyIndex: 1.0}
}

// FareRequest is the input to the fare calculator.
type FareRequest struct {
	UserLocation       Location         `json:"user_location"`
	RestaurantLocation Location         `json:"restaurant_location"`
	DistanceKM         *float64         `json:"distance_km,omitempty"`
	RequestTime        time.Time        `json:"request_time,omitzero"`
	Incentives         IncentiveMetrics `json:"incentive_metrics"`
}

// FareBreakdown itemizes the recommendation for auditability.
type FareBreakdown struct {
	DistanceKM          float64 `json:"distance_km"`
	BasePickupFee       float64 `json:"base_pickup_fee"`
	DistanceComponent   float64 `json:"distance_component"`
	TimeMultiplier      float64 `json:"time_multiplier"`
	PeakMultiplier      float64 `json:"peak_multiplier"`
	IncentiveMultiplier float64 `json:"incentive_multiplier"`
	PricingVersion      string  `json:"pricing_version"`
	DistanceSource      string  `json:"distance_source"`
}

// FareRecommendation is the calculator output. BaseFare doubles as the
// bidding minimum for delivery agents.
type FareRecommendation struct {
	BaseFare           float64       `json:"base_fare"`
	MaxBidLimit        float64       `json:"max_bid_limit"`
	ETAEstimateMinutes int           `json:"eta_estimate_minutes"`
	Breakdown          FareBreakdown `json:"breakdown"`
}

// RecommendFare computes the v1 base fare, bid ceiling and ETA estimate.
// Returns KindInvalidInput when neither distance nor full coordinates are given.
func RecommendFare(req FareRequest) (FareRecommendation, error) {
	distanceKM, source, err := ResolveDistanceKM(req)
	if err != nil {
		return FareRecommendation{}, err
	}

	requestTime := req.RequestTime
	if requestTime.IsZero() {
		requestTime = time.Now()
	}
	hour := requestTime.Hour()

	timeMult := TimeOfDayMultiplier(hour)
	peakMult := PeakHourMultiplier(hour)
	incentiveMult := IncentiveMultiplier(req.Incentives)

	distanceComponent := distanceKM * PerKMRate
	raw := (BasePickupFee + distanceComponent) * timeMult * peakMult * incentiveMult

	baseFare := Round2(clamp(raw, MinBaseFare, MaxBaseFare))

	return FareRecommendation{
		BaseFare:           baseFare,
		MaxBidLimit:        Round2(MaxBidMultiplier * baseFare),
		ETAEstimateMinutes: EstimateETAMinutes(distanceKM, peakMult, req.Incentives.WeatherSeverity),
		Breakdown: FareBreakdown{
			DistanceKM:          Round2(distanceKM),
			BasePickupFee:       BasePickupFee,
			DistanceComponent:   Round2(distanceComponent),
			TimeMultiplier:      timeMult,
			PeakMultiplier:      peakMult,
			IncentiveMultiplier: incentiveMult,
			PricingVersion:      PricingVersion,
			DistanceSource:      source,
		},
	}, nil
}

// BidWindow returns the only legal bid range for an order:
// [base_fare, 1.5 × base_fare], both rounded half-to-even to cents.
func BidWindow(baseFare float64) (min, max float64) {
	return Round2(baseFare), Round2(MaxBidMultiplier * baseFare)
}

// ResolveDistanceKM prefers the caller-provided distance and falls back to
// haversine over the two coordinate pairs.
func ResolveDistanceKM(req FareRequest) (km float64, source string, err error) {
	if req.DistanceKM != nil {
		if *req.DistanceKM <= 0 {
			return 0, "", InvalidInputf("distance_km must be positive")
		}
		return *req.DistanceKM, DistanceSourceInput, nil
	}

	start, end := req.RestaurantLocation, req.UserLocation
	if start.Latitude == nil || start.Longitude == nil || end.Latitude == nil || end.Longitude == nil {
		return 0, "", InvalidInputf(
			"distance_km is required when latitude/longitude is missing for restaurant_location or user_location")
	}

	return HaversineKM(*start.Latitude, *start.Longitude, *end.Latitude, *end.Longitude),
		DistanceSourceHaversine, nil
}

// HaversineKM is the great-circle distance between two coordinate pairs.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	lat1R := lat1 * math.Pi / 180
	lon1R := lon1 * math.Pi / 180
	lat2R := lat2 * math.Pi / 180
	lon2R := lon2 * math.Pi / 180

	dLat := lat2R - lat1R
	dLon := lon2R - lon1R

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1R)*math.Cos(lat2R)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// TimeOfDayMultiplier is piecewise by local hour.
func TimeOfDayMultiplier(hour int) float64 {
	switch {
	case hour < 6:
		return 1.12
	case hour < 11:
		return 1.00
	case hour < 14:
		return 1.08
	case hour < 17:
		return 0.97
	case hour < 22:
		return 1.12
	default:
		return 1.05
	}
}

// PeakHourMultiplier applies during lunch (11-14) and dinner (18-22) rush.
func PeakHourMultiplier(hour int) float64 {
	if (11 <= hour && hour < 14) || (18 <= hour && hour < 22) {
		return 1.12
	}
	return 1.00
}

// IncentiveMultiplier combines demand/supply pressure with weather severity,
// bounded to [0.80, 1.60] and rounded half-to-even to 3 decimals.
func IncentiveMultiplier(m IncentiveMetrics) float64 {
	ratio := m.DemandIndex / math.Max(m.SupplyIndex, 0.1)
	pressure := clamp((ratio-1.0)*0.25, -0.20, 0.40)
	weather := m.WeatherSeverity * 0.15
	return roundBank(clamp(1.0+pressure+weather, 0.80, 1.60), 3)
}

// EstimateETAMinutes is a closed-form travel estimate with a dispatch buffer.
func EstimateETAMinutes(distanceKM, peakMult, weatherSeverity float64) int {
	const (
		baseSpeedKMPH  = 28.0
		dispatchBuffer = 8
	)
	peakPenalty := 1.0
	if peakMult > 1.0 {
		peakPenalty = 0.90
	}
	weatherPenalty := 1.0 - 0.25*weatherSeverity
	effectiveSpeed := math.Max(8.0, baseSpeedKMPH*peakPenalty*weatherPenalty)

	travelMinutes := distanceKM / effectiveSpeed * 60
	eta := int(math.Ceil(travelMinutes)) + dispatchBuffer
	return max(10, eta)
}

// Round2 rounds a monetary value half-to-even to cents.
func Round2(v float64) float64 {
	return roundBank(v, 2)
}

func roundBank(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return f
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
