package features

import (
	"math"
	"time"
)

// Scalar column names of the price record, in training order.
const (
	ColDuration       = "Duration"
	ColTotalStops     = "Total_Stops"
	ColDayOfJourney   = "Day_of_Journey"
	ColMonthOfJourney = "Month_of_Journey"
	ColDepHour        = "Dep_Hour"
	ColDepMinute      = "Dep_Minute"
	ColArrivalHour    = "Arrival_Hour"
	ColArrivalMinute  = "Arrival_Minute"
)

// MaxStops is the largest stop count the price form offers.
const MaxStops = 4

var priceScalarNames = [...]string{
	ColDuration,
	ColTotalStops,
	ColDayOfJourney,
	ColMonthOfJourney,
	ColDepHour,
	ColDepMinute,
	ColArrivalHour,
	ColArrivalMinute,
}

// One-hot tables for the price regressor. Order matches the training schema.
var (
	Airlines = newOneHotTable("airline", "Airline_",
		"Air India",
		"GoAir",
		"IndiGo",
		"Jet Airways",
		"Jet Airways Business",
		"Multiple carriers",
		"Multiple carriers Premium economy",
		"SpiceJet",
		"Trujet",
		"Vistara",
		"Vistara Premium economy",
	)
	Sources = newOneHotTable("source", "Source_",
		"Chennai",
		"Delhi",
		"Kolkata",
		"Mumbai",
	)
	Destinations = newOneHotTable("destination", "Destination_",
		"Cochin",
		"Delhi",
		"Hyderabad",
		"Kolkata",
		"New Delhi",
	)
)

// Widths of the one-hot groups.
const (
	AirlineWidth     = 11
	SourceWidth      = 4
	DestinationWidth = 5
)

// PriceWidth is the number of columns in the price record.
const PriceWidth = len(priceScalarNames) + AirlineWidth + SourceWidth + DestinationWidth

// PriceInput holds the raw price form values.
type PriceInput struct {
	DurationMinutes int       `json:"duration"`
	TotalStops      int       `json:"total_stops"`
	DateOfJourney   time.Time `json:"date_of_journey"`
	DepHour         int       `json:"dep_hour"`
	DepMinute       int       `json:"dep_minute"`
	ArrivalHour     int       `json:"arrival_hour"`
	ArrivalMinute   int       `json:"arrival_minute"`
	Airline         string    `json:"airline"`
	Source          string    `json:"source"`
	Destination     string    `json:"destination"`
}

// PriceFeatures is the named-field record consumed by the regressor.
// The journey year is not part of the record.
type PriceFeatures struct {
	Duration       float64
	TotalStops     float64
	DayOfJourney   float64
	MonthOfJourney float64
	DepHour        float64
	DepMinute      float64
	ArrivalHour    float64
	ArrivalMinute  float64

	Airline     [AirlineWidth]float64
	Source      [SourceWidth]float64
	Destination [DestinationWidth]float64
}

// PriceFeatureNames returns every column name in training order.
func PriceFeatureNames() []string {
	out := make([]string, 0, PriceWidth)
	out = append(out, priceScalarNames[:]...)
	out = append(out, Airlines.FieldNames()...)
	out = append(out, Sources.FieldNames()...)
	out = append(out, Destinations.FieldNames()...)
	return out
}

// Vector returns the values in the order of PriceFeatureNames.
func (p PriceFeatures) Vector() []float64 {
	out := make([]float64, 0, PriceWidth)
	out = append(out,
		p.Duration,
		p.TotalStops,
		p.DayOfJourney,
		p.MonthOfJourney,
		p.DepHour,
		p.DepMinute,
		p.ArrivalHour,
		p.ArrivalMinute,
	)
	out = append(out, p.Airline[:]...)
	out = append(out, p.Source[:]...)
	out = append(out, p.Destination[:]...)
	return out
}

// Record returns the features keyed by column name.
func (p PriceFeatures) Record() map[string]float64 {
	names := PriceFeatureNames()
	values := p.Vector()
	rec := make(map[string]float64, len(names))
	for i, n := range names {
		rec[n] = values[i]
	}
	return rec
}

// Named pairs each value with its column name, in training order.
func (p PriceFeatures) Named() []NamedValue {
	names := PriceFeatureNames()
	values := p.Vector()
	out := make([]NamedValue, len(names))
	for i, n := range names {
		out[i] = NamedValue{Name: n, Value: values[i]}
	}
	return out
}

// EncodePrice maps form values to the regressor's record. Only day and month
// are taken from the journey date.
func EncodePrice(in PriceInput) (PriceFeatures, error) {
	var p PriceFeatures
	if err := Airlines.Encode(in.Airline, p.Airline[:]); err != nil {
		return PriceFeatures{}, err
	}
	if err := Sources.Encode(in.Source, p.Source[:]); err != nil {
		return PriceFeatures{}, err
	}
	if err := Destinations.Encode(in.Destination, p.Destination[:]); err != nil {
		return PriceFeatures{}, err
	}

	p.Duration = float64(in.DurationMinutes)
	p.TotalStops = float64(in.TotalStops)
	p.DayOfJourney = float64(in.DateOfJourney.Day())
	p.MonthOfJourney = float64(in.DateOfJourney.Month())
	p.DepHour = float64(in.DepHour)
	p.DepMinute = float64(in.DepMinute)
	p.ArrivalHour = float64(in.ArrivalHour)
	p.ArrivalMinute = float64(in.ArrivalMinute)
	return p, nil
}

// Validate enforces the bounds the price form declares.
func (in PriceInput) Validate() error {
	if in.DateOfJourney.IsZero() {
		return &RangeError{Field: "date_of_journey", Value: 0, Min: 1, Max: math.Inf(1)}
	}
	checks := []struct {
		field  string
		value  int
		lo, hi float64
	}{
		{"duration", in.DurationMinutes, 1, math.Inf(1)},
		{"total_stops", in.TotalStops, 0, MaxStops},
		{"dep_hour", in.DepHour, 0, 23},
		{"dep_minute", in.DepMinute, 0, 59},
		{"arrival_hour", in.ArrivalHour, 0, 23},
		{"arrival_minute", in.ArrivalMinute, 0, 59},
	}
	for _, c := range checks {
		if err := requireRange(c.field, float64(c.value), c.lo, c.hi); err != nil {
			return err
		}
	}
	return nil
}
