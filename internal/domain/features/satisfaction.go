// Package features turns raw form values into the numeric inputs the trained
// satisfaction classifier and price regressor expect.
//
// The field order and column names here are a contract with model artifacts
// trained elsewhere. They are pinned by tests and re-checked against every
// model the registry loads (see CheckSatisfactionSchema and CheckPriceSchema).
package features

import "math"

// SatisfactionWidth is the length of the satisfaction feature vector.
const SatisfactionWidth = 23

// Categorical labels accepted by the satisfaction form.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"

	CustomerLoyal    = "Loyal Customer"
	CustomerDisloyal = "Disloyal Customer"

	TravelPersonal = "Personal Travel"
	TravelBusiness = "Business travel"

	ClassBusiness = "Business"
	ClassEco      = "Eco"
	ClassEcoPlus  = "Eco Plus"
)

var satisfactionNames = [SatisfactionWidth]string{
	"age",
	"flight_distance",
	"inflight_wifi_service",
	"departure_convenience",
	"ease_online_booking",
	"gate_location",
	"food_drink",
	"online_boarding",
	"seat_comfort",
	"inflight_entertainment",
	"onboard_service",
	"leg_room_service",
	"baggage_handling",
	"checkin_service",
	"inflight_service",
	"cleanliness",
	"departure_delay",
	"arrival_delay",
	"gender_male",
	"customer_type_disloyal",
	"type_of_travel_personal",
	"class_eco",
	"class_eco_plus",
}

// Closed enumerations for the four categorical selections.
var (
	genders       = []string{GenderMale, GenderFemale}
	customerTypes = []string{CustomerLoyal, CustomerDisloyal}
	travelTypes   = []string{TravelPersonal, TravelBusiness}
	classes       = []string{ClassBusiness, ClassEco, ClassEcoPlus}
)

// SatisfactionInput holds the raw satisfaction form values.
type SatisfactionInput struct {
	Age                   float64 `json:"age"`
	FlightDistance        float64 `json:"flight_distance"`
	InflightWifiService   float64 `json:"inflight_wifi_service"`
	DepartureConvenience  float64 `json:"departure_convenience"`
	EaseOnlineBooking     float64 `json:"ease_online_booking"`
	GateLocation          float64 `json:"gate_location"`
	FoodDrink             float64 `json:"food_drink"`
	OnlineBoarding        float64 `json:"online_boarding"`
	SeatComfort           float64 `json:"seat_comfort"`
	InflightEntertainment float64 `json:"inflight_entertainment"`
	OnboardService        float64 `json:"onboard_service"`
	LegRoomService        float64 `json:"leg_room_service"`
	BaggageHandling       float64 `json:"baggage_handling"`
	CheckinService        float64 `json:"checkin_service"`
	InflightService       float64 `json:"inflight_service"`
	Cleanliness           float64 `json:"cleanliness"`
	DepartureDelay        float64 `json:"departure_delay"`
	ArrivalDelay          float64 `json:"arrival_delay"`

	Gender       string `json:"gender"`
	CustomerType string `json:"customer_type"`
	TravelType   string `json:"type_of_travel"`
	Class        string `json:"class"`
}

// SatisfactionFeatures is the ordered vector consumed by the classifier.
type SatisfactionFeatures [SatisfactionWidth]float64

// Vector returns a copy of the features in model order.
func (f SatisfactionFeatures) Vector() []float64 {
	out := make([]float64, SatisfactionWidth)
	copy(out, f[:])
	return out
}

// Named pairs each value with its column name, in model order.
func (f SatisfactionFeatures) Named() []NamedValue {
	out := make([]NamedValue, SatisfactionWidth)
	for i, name := range satisfactionNames {
		out[i] = NamedValue{Name: name, Value: f[i]}
	}
	return out
}

// NamedValue is one feature column and its encoded value.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// SatisfactionFeatureNames returns the 23 column names in model order.
func SatisfactionFeatureNames() []string {
	out := make([]string, SatisfactionWidth)
	copy(out, satisfactionNames[:])
	return out
}

// EncodeSatisfaction maps form values to the classifier's feature vector.
// Numeric bounds are not re-checked here; see SatisfactionInput.Validate.
func EncodeSatisfaction(in SatisfactionInput) (SatisfactionFeatures, error) {
	var f SatisfactionFeatures

	if err := requireMember("gender", in.Gender, genders); err != nil {
		return f, err
	}
	if err := requireMember("customer_type", in.CustomerType, customerTypes); err != nil {
		return f, err
	}
	if err := requireMember("type_of_travel", in.TravelType, travelTypes); err != nil {
		return f, err
	}
	if err := requireMember("class", in.Class, classes); err != nil {
		return f, err
	}

	f = SatisfactionFeatures{
		in.Age,
		in.FlightDistance,
		in.InflightWifiService,
		in.DepartureConvenience,
		in.EaseOnlineBooking,
		in.GateLocation,
		in.FoodDrink,
		in.OnlineBoarding,
		in.SeatComfort,
		in.InflightEntertainment,
		in.OnboardService,
		in.LegRoomService,
		in.BaggageHandling,
		in.CheckinService,
		in.InflightService,
		in.Cleanliness,
		in.DepartureDelay,
		in.ArrivalDelay,
		indicator(in.Gender == GenderMale),
		indicator(in.CustomerType == CustomerDisloyal),
		indicator(in.TravelType == TravelPersonal),
		indicator(in.Class == ClassEco),
		indicator(in.Class == ClassEcoPlus),
	}
	return f, nil
}

// Validate enforces the bounds the form declares for each numeric field.
func (in SatisfactionInput) Validate() error {
	checks := []struct {
		field  string
		value  float64
		lo, hi float64
	}{
		{"age", in.Age, 1, 100},
		{"flight_distance", in.FlightDistance, 0, math.Inf(1)},
		{"inflight_wifi_service", in.InflightWifiService, 0, 5},
		{"departure_convenience", in.DepartureConvenience, 0, 5},
		{"ease_online_booking", in.EaseOnlineBooking, 0, 5},
		{"gate_location", in.GateLocation, 0, 5},
		{"food_drink", in.FoodDrink, 0, 5},
		{"online_boarding", in.OnlineBoarding, 0, 5},
		{"seat_comfort", in.SeatComfort, 0, 5},
		{"inflight_entertainment", in.InflightEntertainment, 0, 5},
		{"onboard_service", in.OnboardService, 0, 5},
		{"leg_room_service", in.LegRoomService, 0, 5},
		{"baggage_handling", in.BaggageHandling, 0, 5},
		{"checkin_service", in.CheckinService, 0, 5},
		{"inflight_service", in.InflightService, 0, 5},
		{"cleanliness", in.Cleanliness, 0, 5},
		{"departure_delay", in.DepartureDelay, 0, math.Inf(1)},
		{"arrival_delay", in.ArrivalDelay, 0, math.Inf(1)},
	}
	for _, c := range checks {
		if err := requireRange(c.field, c.value, c.lo, c.hi); err != nil {
			return err
		}
	}
	return nil
}

func requireMember(field, value string, domain []string) error {
	for _, v := range domain {
		if v == value {
			return nil
		}
	}
	return &CategoryError{Field: field, Value: value}
}

func requireRange(field string, value, lo, hi float64) error {
	if math.IsNaN(value) || value < lo || value > hi {
		return &RangeError{Field: field, Value: value, Min: lo, Max: hi}
	}
	return nil
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
