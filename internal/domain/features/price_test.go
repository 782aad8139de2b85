package features_test

import (
	"errors"
	"testing"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func basePrice() features.PriceInput {
	return features.PriceInput{
		DurationMinutes: 170,
		TotalStops:      0,
		DateOfJourney:   time.Date(2019, time.March, 24, 0, 0, 0, 0, time.UTC),
		DepHour:         22,
		DepMinute:       20,
		ArrivalHour:     1,
		ArrivalMinute:   10,
		Airline:         "IndiGo",
		Source:          "Delhi",
		Destination:     "Cochin",
	}
}

func countOnes(v []float64) int {
	n := 0
	for _, x := range v {
		if x == 1 {
			n++
		} else {
			So(x, ShouldEqual, 0)
		}
	}
	return n
}

func TestPriceFeatureNames(t *testing.T) {
	Convey("Given the price feature names", t, func() {
		names := features.PriceFeatureNames()

		Convey("Then there are 28 unique columns", func() {
			So(len(names), ShouldEqual, features.PriceWidth)
			So(features.PriceWidth, ShouldEqual, 28)
			seen := map[string]bool{}
			for _, n := range names {
				So(seen[n], ShouldBeFalse)
				seen[n] = true
			}
		})

		Convey("And the one-hot groups follow the scalar columns in training order", func() {
			So(names[:8], ShouldResemble, []string{
				"Duration", "Total_Stops", "Day_of_Journey", "Month_of_Journey",
				"Dep_Hour", "Dep_Minute", "Arrival_Hour", "Arrival_Minute",
			})
			So(names[8], ShouldEqual, "Airline_Air India")
			So(names[18], ShouldEqual, "Airline_Vistara Premium economy")
			So(names[19:23], ShouldResemble, []string{
				"Source_Chennai", "Source_Delhi", "Source_Kolkata", "Source_Mumbai",
			})
			So(names[23:], ShouldResemble, []string{
				"Destination_Cochin", "Destination_Delhi", "Destination_Hyderabad",
				"Destination_Kolkata", "Destination_New Delhi",
			})
		})
	})
}

func TestEncodePrice(t *testing.T) {
	Convey("Given a price input", t, func() {
		in := basePrice()

		Convey("When the journey date is 2019-03-24", func() {
			p, err := features.EncodePrice(in)
			So(err, ShouldBeNil)

			Convey("Then day is 24 and month is 3", func() {
				So(p.DayOfJourney, ShouldEqual, 24)
				So(p.MonthOfJourney, ShouldEqual, 3)
			})

			Convey("And the record has no year column", func() {
				rec := p.Record()
				So(len(rec), ShouldEqual, features.PriceWidth)
				for name := range rec {
					So(name, ShouldNotContainSubstring, "Year")
				}
			})
		})

		Convey("When the same day falls in another year", func() {
			a, err := features.EncodePrice(in)
			So(err, ShouldBeNil)
			in.DateOfJourney = time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC)
			b, err := features.EncodePrice(in)
			So(err, ShouldBeNil)

			Convey("Then the records are identical", func() {
				So(a, ShouldResemble, b)
			})
		})

		Convey("When the selection is Trujet, Mumbai to Kolkata", func() {
			in.Airline, in.Source, in.Destination = "Trujet", "Mumbai", "Kolkata"
			p, err := features.EncodePrice(in)
			So(err, ShouldBeNil)
			rec := p.Record()

			Convey("Then exactly the matching columns are set", func() {
				So(rec["Airline_Trujet"], ShouldEqual, 1)
				So(rec["Source_Mumbai"], ShouldEqual, 1)
				So(rec["Destination_Kolkata"], ShouldEqual, 1)
				So(countOnes(p.Airline[:]), ShouldEqual, 1)
				So(countOnes(p.Source[:]), ShouldEqual, 1)
				So(countOnes(p.Destination[:]), ShouldEqual, 1)
			})
		})

		Convey("When the airline is IndiGo", func() {
			p, err := features.EncodePrice(in)
			So(err, ShouldBeNil)
			rec := p.Record()

			Convey("Then Airline_IndiGo is 1 and the other ten are 0", func() {
				for _, name := range features.Airlines.FieldNames() {
					if name == "Airline_IndiGo" {
						So(rec[name], ShouldEqual, 1)
					} else {
						So(rec[name], ShouldEqual, 0)
					}
				}
			})
		})

		Convey("When the airline is not in the enumeration", func() {
			in.Airline = "Unknown Air"
			_, err := features.EncodePrice(in)

			Convey("Then it fails with ErrInvalidCategory", func() {
				So(errors.Is(err, features.ErrInvalidCategory), ShouldBeTrue)
				var ce *features.CategoryError
				So(errors.As(err, &ce), ShouldBeTrue)
				So(ce.Field, ShouldEqual, "airline")
			})
		})

		Convey("When the destination is not in the enumeration", func() {
			in.Destination = "Banglore"
			_, err := features.EncodePrice(in)
			So(errors.Is(err, features.ErrInvalidCategory), ShouldBeTrue)
		})

		Convey("When the source has trailing whitespace", func() {
			in.Source = "Delhi "
			_, err := features.EncodePrice(in)
			So(errors.Is(err, features.ErrInvalidCategory), ShouldBeTrue)
		})

		Convey("When Vector and Named are compared with the names", func() {
			p, err := features.EncodePrice(in)
			So(err, ShouldBeNil)
			names := features.PriceFeatureNames()
			vec := p.Vector()
			named := p.Named()

			Convey("Then all three agree position by position", func() {
				So(len(vec), ShouldEqual, len(names))
				for i := range names {
					So(named[i].Name, ShouldEqual, names[i])
					So(named[i].Value, ShouldEqual, vec[i])
				}
			})
		})
	})
}

func TestPriceOneHotExhaustive(t *testing.T) {
	Convey("Given every member of every price enumeration", t, func() {
		tables := []features.OneHotTable{features.Airlines, features.Sources, features.Destinations}

		Convey("Then each encodes to exactly one set indicator at its own position", func() {
			for _, table := range tables {
				for pos, c := range table.Categories() {
					dst := make([]float64, table.Len())
					So(table.Encode(c, dst), ShouldBeNil)
					So(countOnes(dst), ShouldEqual, 1)
					So(dst[pos], ShouldEqual, 1)
				}
			}
		})

		Convey("And the group widths match the model schema", func() {
			So(features.Airlines.Len(), ShouldEqual, features.AirlineWidth)
			So(features.Sources.Len(), ShouldEqual, features.SourceWidth)
			So(features.Destinations.Len(), ShouldEqual, features.DestinationWidth)
		})

		Convey("And a failed lookup leaves the destination untouched", func() {
			dst := []float64{0, 1, 0, 0}
			err := features.Sources.Encode("Bangalore", dst)
			So(errors.Is(err, features.ErrInvalidCategory), ShouldBeTrue)
			So(dst, ShouldResemble, []float64{0, 1, 0, 0})
		})
	})
}

func TestPriceValidate(t *testing.T) {
	Convey("Given a price input", t, func() {
		in := basePrice()

		Convey("When everything is within bounds", func() {
			So(in.Validate(), ShouldBeNil)
		})

		Convey("When the duration is zero", func() {
			in.DurationMinutes = 0
			So(errors.Is(in.Validate(), features.ErrOutOfRange), ShouldBeTrue)
		})

		Convey("When there are five stops", func() {
			in.TotalStops = 5
			So(errors.Is(in.Validate(), features.ErrOutOfRange), ShouldBeTrue)
		})

		Convey("When the departure hour is 24", func() {
			in.DepHour = 24
			So(errors.Is(in.Validate(), features.ErrOutOfRange), ShouldBeTrue)
		})

		Convey("When the arrival minute is 60", func() {
			in.ArrivalMinute = 60
			So(errors.Is(in.Validate(), features.ErrOutOfRange), ShouldBeTrue)
		})

		Convey("When the date is missing", func() {
			in.DateOfJourney = time.Time{}
			err := in.Validate()
			var re *features.RangeError
			So(errors.As(err, &re), ShouldBeTrue)
			So(re.Field, ShouldEqual, "date_of_journey")
		})
	})
}
