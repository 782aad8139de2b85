package features_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCheckSatisfactionSchema(t *testing.T) {
	Convey("Given a declared satisfaction schema", t, func() {
		declared := features.SatisfactionFeatureNames()

		Convey("When it matches the encoder", func() {
			So(features.CheckSatisfactionSchema(declared), ShouldBeNil)
		})

		Convey("When two columns are swapped", func() {
			declared[21], declared[22] = declared[22], declared[21]
			So(errors.Is(features.CheckSatisfactionSchema(declared), features.ErrSchemaMismatch), ShouldBeTrue)
		})

		Convey("When a column is missing", func() {
			So(errors.Is(features.CheckSatisfactionSchema(declared[:22]), features.ErrSchemaMismatch), ShouldBeTrue)
		})
	})
}

func TestCheckPriceSchema(t *testing.T) {
	Convey("Given a declared price schema", t, func() {
		declared := features.PriceFeatureNames()

		Convey("When it lists the encoder columns in another order", func() {
			declared[0], declared[27] = declared[27], declared[0]
			So(features.CheckPriceSchema(declared), ShouldBeNil)
		})

		Convey("When it expects a year column", func() {
			declared = append(declared, "Year_of_Journey")
			err := features.CheckPriceSchema(declared)

			Convey("Then the unknown column is reported", func() {
				So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Year_of_Journey")
			})
		})

		Convey("When the last column is missing", func() {
			err := features.CheckPriceSchema(declared[:27])
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Destination_New Delhi")
		})

		Convey("When a column is declared twice", func() {
			declared[1] = declared[0]
			So(errors.Is(features.CheckPriceSchema(declared), features.ErrSchemaMismatch), ShouldBeTrue)
		})
	})
}

func TestDefaultSatisfactionInput(t *testing.T) {
	Convey("Given the default satisfaction input", t, func() {
		in := features.DefaultSatisfactionInput()

		Convey("Then it passes validation and encodes", func() {
			So(in.Validate(), ShouldBeNil)
			_, err := features.EncodeSatisfaction(in)
			So(err, ShouldBeNil)
		})

		Convey("Then it carries the form defaults field by field", func() {
			raw, err := json.Marshal(in)
			So(err, ShouldBeNil)
			var byName map[string]any
			So(json.Unmarshal(raw, &byName), ShouldBeNil)

			for _, f := range features.SatisfactionForm().Fields {
				So(byName[f.Name], ShouldEqual, f.Default)
			}
		})
	})
}

func TestForms(t *testing.T) {
	Convey("Given the satisfaction form", t, func() {
		form := features.SatisfactionForm()

		Convey("Then it has one field per raw input", func() {
			So(len(form.Fields), ShouldEqual, 22)
			So(form.Fields[0].Name, ShouldEqual, "age")
			So(*form.Fields[0].Min, ShouldEqual, 1)
			So(*form.Fields[0].Max, ShouldEqual, 100)
			So(form.Fields[0].Default, ShouldEqual, 25.0)
		})

		Convey("And unbounded fields carry no max", func() {
			So(form.Fields[1].Max, ShouldBeNil)
		})

		Convey("And the class select offers the three classes", func() {
			So(form.Fields[21].Options, ShouldResemble, []string{"Business", "Eco", "Eco Plus"})
		})
	})

	Convey("Given the price form", t, func() {
		form := features.PriceForm()

		Convey("Then its selects mirror the one-hot tables", func() {
			So(form.Fields[7].Options, ShouldResemble, features.Airlines.Categories())
			So(form.Fields[8].Options, ShouldResemble, features.Sources.Categories())
			So(form.Fields[9].Options, ShouldResemble, features.Destinations.Categories())
		})

		Convey("And stops range from zero to four", func() {
			So(form.Fields[1].Options, ShouldResemble, []string{"0", "1", "2", "3", "4"})
		})
	})
}
