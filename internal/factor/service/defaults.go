package service

// Built-in default factors (kg CO2e per unit) covering common activity
// types, consulted when the factor store has no match. Units are implied by
// the activity type: km for transport, kg or serving for food, kWh for
// energy.
var defaultFactors = map[string]map[string]float64{
	"transport": {
		"car_petrol":   0.192,
		"car_diesel":   0.171,
		"car_electric": 0.053,
		"bus":          0.105,
		"train":        0.041,
		"metro":        0.031,
		"motorbike":    0.114,
		"flight_short": 0.255,
		"flight_long":  0.195,
		"bicycle":      0.0,
		"walking":      0.0,
	},
	"food": {
		"beef":            27.0,
		"lamb":            25.6,
		"pork":            6.9,
		"chicken":         4.7,
		"fish":            5.1,
		"dairy":           2.8,
		"eggs":            3.6,
		"rice":            2.7,
		"vegetables":      0.4,
		"fruits":          0.5,
		"vegan_meal":      0.7,
		"vegetarian_meal": 1.3,
	},
	"energy": {
		"electricity": 0.233,
		"natural_gas": 0.185,
		"heating_oil": 0.268,
		"lpg":         0.214,
		"solar":       0.041,
	},
	"other": {
		"waste_recycled": 0.021,
		"waste_landfill": 0.587,
		"water":          0.000344,
		"clothing":       15.0,
		"electronics":    50.0,
	},
}

// fallbackFactor is the conservative estimate applied when no factor exists
// anywhere in the chain.
const fallbackFactor = 0.1

func lookupDefault(category, activityType string) (float64, bool) {
	byType, ok := defaultFactors[category]
	if !ok {
		return 0, false
	}
	factor, ok := byType[activityType]
	return factor, ok
}
