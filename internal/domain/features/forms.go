package features

import "math"

// FieldKind tells a client which widget to render for a form field.
type FieldKind string

const (
	KindNumber FieldKind = "number"
	KindSelect FieldKind = "select"
	KindDate   FieldKind = "date"
)

// FormField describes one input on a prediction form.
type FormField struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
	Default any       `json:"default,omitempty"`
	Options []string  `json:"options,omitempty"`
}

// Form is the full description of a prediction form.
type Form struct {
	Task   string      `json:"task"`
	Title  string      `json:"title"`
	Fields []FormField `json:"fields"`
}

func bound(v float64) *float64 {
	if math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func number(name, label string, lo, hi, def float64) FormField {
	return FormField{Name: name, Label: label, Kind: KindNumber, Min: bound(lo), Max: bound(hi), Default: def}
}

func rating(name, label string, def float64) FormField {
	return number(name, label, 0, 5, def)
}

func choice(name, label string, options []string) FormField {
	opts := make([]string, len(options))
	copy(opts, options)
	return FormField{Name: name, Label: label, Kind: KindSelect, Default: opts[0], Options: opts}
}

// DefaultSatisfactionInput returns the values the satisfaction form starts
// from. Fields a client leaves out of a submission keep these values.
func DefaultSatisfactionInput() SatisfactionInput {
	return SatisfactionInput{
		Age:                   25,
		FlightDistance:        235,
		InflightWifiService:   3,
		DepartureConvenience:  2,
		EaseOnlineBooking:     3,
		GateLocation:          3,
		FoodDrink:             3,
		OnlineBoarding:        1,
		SeatComfort:           3,
		InflightEntertainment: 1,
		OnboardService:        1,
		LegRoomService:        1,
		BaggageHandling:       5,
		CheckinService:        3,
		InflightService:       1,
		Cleanliness:           4,
		DepartureDelay:        6,
		ArrivalDelay:          0,
		Gender:                genders[0],
		CustomerType:          customerTypes[0],
		TravelType:            travelTypes[0],
		Class:                 classes[0],
	}
}

// SatisfactionForm returns the satisfaction form with its bounds and defaults.
func SatisfactionForm() Form {
	inf := math.Inf(1)
	d := DefaultSatisfactionInput()
	return Form{
		Task:  "satisfaction",
		Title: "Customer Satisfaction Prediction",
		Fields: []FormField{
			number("age", "Age", 1, 100, d.Age),
			number("flight_distance", "Flight Distance", 0, inf, d.FlightDistance),
			rating("inflight_wifi_service", "Inflight Wifi Service", d.InflightWifiService),
			rating("departure_convenience", "Departure/Arrival Time Convenient", d.DepartureConvenience),
			rating("ease_online_booking", "Ease of Online Booking", d.EaseOnlineBooking),
			rating("gate_location", "Gate Location", d.GateLocation),
			rating("food_drink", "Food and Drink", d.FoodDrink),
			rating("online_boarding", "Online Boarding", d.OnlineBoarding),
			rating("seat_comfort", "Seat Comfort", d.SeatComfort),
			rating("inflight_entertainment", "Inflight Entertainment", d.InflightEntertainment),
			rating("onboard_service", "On-board Service", d.OnboardService),
			rating("leg_room_service", "Leg Room Service", d.LegRoomService),
			rating("baggage_handling", "Baggage Handling", d.BaggageHandling),
			rating("checkin_service", "Checkin Service", d.CheckinService),
			rating("inflight_service", "Inflight Service", d.InflightService),
			rating("cleanliness", "Cleanliness", d.Cleanliness),
			number("departure_delay", "Departure Delay in Minutes", 0, inf, d.DepartureDelay),
			number("arrival_delay", "Arrival Delay in Minutes", 0, inf, d.ArrivalDelay),
			choice("gender", "Gender", genders),
			choice("customer_type", "Customer Type", customerTypes),
			choice("type_of_travel", "Type of Travel", travelTypes),
			choice("class", "Class", classes),
		},
	}
}

// PriceForm returns the price form with its bounds and defaults.
func PriceForm() Form {
	stops := []string{"0", "1", "2", "3", "4"}
	return Form{
		Task:  "price",
		Title: "Flight Price Prediction",
		Fields: []FormField{
			number("duration", "Duration (minutes)", 1, math.Inf(1), 1),
			{Name: "total_stops", Label: "Total Stops", Kind: KindSelect, Default: stops[0], Options: stops},
			{Name: "date_of_journey", Label: "Date of Journey", Kind: KindDate},
			number("dep_hour", "Departure Hour", 0, 23, 0),
			number("dep_minute", "Departure Minute", 0, 59, 0),
			number("arrival_hour", "Arrival Hour", 0, 23, 0),
			number("arrival_minute", "Arrival Minute", 0, 59, 0),
			choice("airline", "Airline", Airlines.Categories()),
			choice("source", "Source", Sources.Categories()),
			choice("destination", "Destination", Destinations.Categories()),
		},
	}
}
