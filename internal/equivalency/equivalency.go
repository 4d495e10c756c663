// Package equivalency turns CO2 kilograms into tangible comparisons for
// summary responses, using EPA greenhouse-gas equivalency factors.
package equivalency

const (
	// kg CO2e per mile for an average passenger vehicle.
	milesDrivenFactor = 0.192

	// kg CO2e per full smartphone charge.
	smartphoneChargeFactor = 0.00822

	// kg CO2e absorbed by one tree seedling grown for ten years.
	treeSeedlingFactor = 60.0
)

// Equivalencies expresses one CO2 quantity in everyday terms.
type Equivalencies struct {
	MilesDriven       float64 `json:"miles_driven"`
	SmartphoneCharges float64 `json:"smartphone_charges"`
	TreeSeedlings     float64 `json:"tree_seedlings"`
}

// Calculate maps a CO2 quantity to its equivalencies. Non-positive input
// yields zeroes rather than an error; an empty ledger is not a failure.
func Calculate(kgCo2 float64) Equivalencies {
	if kgCo2 <= 0 {
		return Equivalencies{}
	}
	return Equivalencies{
		MilesDriven:       kgCo2 / milesDrivenFactor,
		SmartphoneCharges: kgCo2 / smartphoneChargeFactor,
		TreeSeedlings:     kgCo2 / treeSeedlingFactor,
	}
}
