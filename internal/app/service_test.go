package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/cache"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/dataset"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/registry"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/repository"
	service "github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/app"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/scoring"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
)

const (
	satisfactionURI = "runs:/sat/random_forest_model"
	priceURI        = "runs:/price/Gradient Boosting Regressor Tuning"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type mockModels struct{ mock.Mock }

func (m *mockModels) Classifier(ctx context.Context, uri string) (scoring.Classifier, error) {
	args := m.Called(ctx, uri)
	c, _ := args.Get(0).(scoring.Classifier)
	return c, args.Error(1)
}

func (m *mockModels) Regressor(ctx context.Context, uri string) (scoring.Regressor, error) {
	args := m.Called(ctx, uri)
	r, _ := args.Get(0).(scoring.Regressor)
	return r, args.Error(1)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(cache.Entry), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, e cache.Entry) error {
	return m.Called(ctx, key, e).Error(0)
}

type mockPrices struct{ mock.Mock }

func (m *mockPrices) Histogram(bins int) (dataset.Histogram, error) {
	args := m.Called(bins)
	return args.Get(0).(dataset.Histogram), args.Error(1)
}

// Every weight is zero, so P(satisfied) = σ(1) for any input.
func testClassifier() scoring.Classifier {
	names := features.SatisfactionFeatureNames()
	c, err := scoring.NewLogistic(names, make([]float64, len(names)), 1)
	if err != nil {
		panic(err)
	}
	return c
}

// price = 3000 + 10·Duration
func testRegressor() scoring.Regressor {
	coef := make(map[string]float64)
	for _, n := range features.PriceFeatureNames() {
		coef[n] = 0
	}
	coef["Duration"] = 10
	r, err := scoring.NewLinear(3000, coef)
	if err != nil {
		panic(err)
	}
	return r
}

func validSatisfaction() features.SatisfactionInput {
	return features.SatisfactionInput{
		Age: 25, FlightDistance: 235,
		InflightWifiService: 3, DepartureConvenience: 2, EaseOnlineBooking: 3,
		GateLocation: 3, FoodDrink: 3, OnlineBoarding: 1, SeatComfort: 3,
		InflightEntertainment: 1, OnboardService: 1, LegRoomService: 1,
		BaggageHandling: 5, CheckinService: 3, InflightService: 1, Cleanliness: 4,
		DepartureDelay: 6, ArrivalDelay: 0,
		Gender:       features.GenderFemale,
		CustomerType: features.CustomerLoyal,
		TravelType:   features.TravelBusiness,
		Class:        features.ClassEcoPlus,
	}
}

func validPrice() features.PriceInput {
	return features.PriceInput{
		DurationMinutes: 170,
		TotalStops:      0,
		DateOfJourney:   time.Date(2019, 3, 24, 0, 0, 0, 0, time.UTC),
		DepHour:         22, DepMinute: 20,
		ArrivalHour: 1, ArrivalMinute: 10,
		Airline:     "IndiGo",
		Source:      "Delhi",
		Destination: "Cochin",
	}
}

func newModels() *mockModels {
	m := &mockModels{}
	m.On("Classifier", mock.Anything, satisfactionURI).Return(testClassifier(), nil)
	m.On("Regressor", mock.Anything, priceURI).Return(testRegressor(), nil)
	return m
}

func newService(models service.ModelSource, opts ...service.Option) *service.Service {
	ids := 0
	base := []service.Option{
		service.WithModels(models),
		service.WithSatisfactionModel(satisfactionURI),
		service.WithPriceModel(priceURI),
		service.WithWorkerCount(2),
		service.WithQueueSize(100),
		service.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("p-%d", ids)
		}),
	}
	return service.New(append(base, opts...)...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without a model source", t, func() {
		svc := service.New()

		Convey("Then it refuses to start", func() {
			So(errors.Is(svc.Start(ctx), service.ErrNotConfigured), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a service with an unknown currency", t, func() {
		svc := newService(newModels(), service.WithCurrency("rupees"))

		Convey("Then it refuses to start", func() {
			So(svc.Start(ctx), ShouldNotBeNil)
		})
	})

	Convey("Given a service that has not been started", t, func() {
		svc := newService(newModels())

		Convey("Then predictions are rejected", func() {
			_, err := svc.PredictSatisfaction(ctx, validSatisfaction())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.PredictPrice(ctx, validPrice())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.History(ctx, "", 10)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a started service", t, func() {
		svc := newService(newModels())
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then stats report it running", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueLength"], ShouldEqual, 0)
			So(stats["historySize"], ShouldEqual, 0)
		})

		Convey("When it is stopped", func() {
			svc.Stop()
			svc.Stop()

			Convey("Then it is marked stopped and can start again", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Start(ctx), ShouldBeNil)
				_, err := svc.PredictPrice(ctx, validPrice())
				So(err, ShouldBeNil)
				svc.Stop()
			})
		})

		Reset(func() { svc.Stop() })
	})

	Convey("Given a started service that created its own history store", t, func() {
		svc := newService(newModels())
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		Convey("When history is read while the service stops", func() {
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				errs []error
			)
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for n := 0; n < 200; n++ {
						_, err := svc.History(ctx, "", 5)
						_, getErr := svc.Prediction(ctx, "p-1")
						mu.Lock()
						errs = append(errs, err, getErr)
						mu.Unlock()
					}
				}()
			}
			svc.Stop()
			wg.Wait()

			Convey("Then readers see the store or ErrNotStarted and never panic", func() {
				for _, err := range errs {
					if err == nil {
						continue
					}
					So(errors.Is(err, service.ErrNotStarted) || errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				}
			})

			Convey("Then reads after stopping are rejected", func() {
				_, err := svc.History(ctx, "", 5)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				_, err = svc.Prediction(ctx, "p-1")
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_PredictSatisfaction(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		models := newModels()
		svc := newService(models)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		Convey("When a valid form is submitted", func() {
			p, err := svc.PredictSatisfaction(ctx, validSatisfaction())

			Convey("Then the classifier output is formatted", func() {
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, "p-1")
				So(p.Label, ShouldEqual, types.LabelSatisfied)
				So(p.Class, ShouldEqual, 1)
				So(p.Confidence, ShouldEqual, 73.11)
				So(p.Probabilities.Satisfied+p.Probabilities.Dissatisfied, ShouldAlmostEqual, 1, 1e-9)
				So(p.ModelURI, ShouldEqual, satisfactionURI)
				So(p.Cached, ShouldBeFalse)
			})

			Convey("Then the encoded features are echoed in model order", func() {
				So(p.Features, ShouldHaveLength, features.SatisfactionWidth)
				So(p.Features[0], ShouldResemble, features.NamedValue{Name: "age", Value: 25})
				last := p.Features[len(p.Features)-1]
				So(last, ShouldResemble, features.NamedValue{Name: "class_eco_plus", Value: 1})
			})

			Convey("Then the prediction is recorded in history", func() {
				So(waitFor(func() bool {
					h, _ := svc.History(ctx, types.TaskSatisfaction, 10)
					return len(h) == 1
				}), ShouldBeTrue)
				h, err := svc.History(ctx, "", 0)
				So(err, ShouldBeNil)
				So(h[0].ID, ShouldEqual, p.ID)
				So(h[0].Label, ShouldEqual, types.LabelSatisfied)

				got, err := svc.Prediction(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.Task, ShouldEqual, types.TaskSatisfaction)
			})
		})

		Convey("When a rating is out of range", func() {
			in := validSatisfaction()
			in.SeatComfort = 6
			_, err := svc.PredictSatisfaction(ctx, in)

			Convey("Then the form is rejected before any model is loaded", func() {
				So(errors.Is(err, features.ErrOutOfRange), ShouldBeTrue)
				var rangeErr *features.RangeError
				So(errors.As(err, &rangeErr), ShouldBeTrue)
				So(rangeErr.Field, ShouldEqual, "seat_comfort")
				So(models.AssertNotCalled(t, "Classifier", mock.Anything, mock.Anything), ShouldBeTrue)
			})
		})

		Convey("When a category is unknown", func() {
			in := validSatisfaction()
			in.Class = "First"
			_, err := svc.PredictSatisfaction(ctx, in)
			So(errors.Is(err, features.ErrInvalidCategory), ShouldBeTrue)
		})
	})

	Convey("Given a service whose classifier cannot be loaded", t, func() {
		models := &mockModels{}
		models.On("Classifier", mock.Anything, satisfactionURI).
			Return(nil, fmt.Errorf("%w: %w", registry.ErrUnavailable, registry.ErrNotFound))
		svc := newService(models)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		_, err := svc.PredictSatisfaction(ctx, validSatisfaction())
		So(errors.Is(err, registry.ErrUnavailable), ShouldBeTrue)
		So(errors.Is(err, registry.ErrNotFound), ShouldBeTrue)
	})
}

func TestService_PredictPrice(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newService(newModels(), service.WithClock(func() time.Time {
			return time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("IST", 19800))
		}))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		Convey("When a valid form is submitted", func() {
			p, err := svc.PredictPrice(ctx, validPrice())

			Convey("Then the regressor output is formatted in rupees", func() {
				So(err, ShouldBeNil)
				So(p.Amount, ShouldEqual, 4700)
				So(p.Currency, ShouldEqual, "INR")
				So(p.Display, ShouldContainSubstring, "₹")
				So(p.Display, ShouldContainSubstring, "4,700.00")
				So(p.CreatedAt.Location(), ShouldEqual, time.UTC)
			})

			Convey("Then the encoded record shows day and month only", func() {
				byName := make(map[string]float64, len(p.Features))
				for _, f := range p.Features {
					byName[f.Name] = f.Value
				}
				So(p.Features, ShouldHaveLength, features.PriceWidth)
				So(byName["Day_of_Journey"], ShouldEqual, 24)
				So(byName["Month_of_Journey"], ShouldEqual, 3)
				So(byName["Airline_IndiGo"], ShouldEqual, 1)
				So(byName["Source_Delhi"], ShouldEqual, 1)
				So(byName["Destination_Cochin"], ShouldEqual, 1)
			})
		})

		Convey("When the airline is not one the model knows", func() {
			in := validPrice()
			in.Airline = "Unknown Air"
			_, err := svc.PredictPrice(ctx, in)
			So(errors.Is(err, features.ErrInvalidCategory), ShouldBeTrue)
		})

		Convey("When the journey date is missing", func() {
			in := validPrice()
			in.DateOfJourney = time.Time{}
			_, err := svc.PredictPrice(ctx, in)
			So(errors.Is(err, features.ErrOutOfRange), ShouldBeTrue)
		})
	})
}

func TestService_PredictionCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a prediction cache", t, func() {
		c := &mockCache{}
		svc := newService(newModels(), service.WithPredictionCache(c))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		Convey("When the cache misses", func() {
			c.On("Get", mock.Anything, mock.Anything).Return(cache.Entry{}, false, nil)
			c.On("Set", mock.Anything, mock.Anything, cache.Entry{Amount: 4700}).Return(nil)

			p, err := svc.PredictPrice(ctx, validPrice())

			Convey("Then the model output is computed and stored", func() {
				So(err, ShouldBeNil)
				So(p.Cached, ShouldBeFalse)
				So(c.AssertCalled(t, "Set", mock.Anything, mock.Anything, cache.Entry{Amount: 4700}), ShouldBeTrue)
			})
		})

		Convey("When the cache hits", func() {
			c.On("Get", mock.Anything, mock.Anything).Return(cache.Entry{Class: 0, Proba: [2]float64{0.9, 0.1}}, true, nil)

			p, err := svc.PredictSatisfaction(ctx, validSatisfaction())

			Convey("Then the cached output is served", func() {
				So(err, ShouldBeNil)
				So(p.Cached, ShouldBeTrue)
				So(p.Label, ShouldEqual, types.LabelDissatisfied)
				So(p.Confidence, ShouldEqual, 90)
				So(c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything), ShouldBeTrue)
			})
		})

		Convey("When the cache is down", func() {
			c.On("Get", mock.Anything, mock.Anything).Return(cache.Entry{}, false, errors.New("connection refused"))
			c.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

			p, err := svc.PredictPrice(ctx, validPrice())

			Convey("Then the prediction still succeeds", func() {
				So(err, ShouldBeNil)
				So(p.Amount, ShouldEqual, 4700)
			})
		})
	})
}

type recordingSink struct {
	mu  sync.Mutex
	ids []string
}

func (s *recordingSink) Write(_ context.Context, ev model.Event) error { //nolint:gocritic // hugeParam
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, ev.EventID)
	return nil
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func TestService_Recording(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a history store and a publisher", t, func() {
		store := repository.NewMemoryStore(ctx, repository.WithCapacity(3))
		pub := &recordingSink{}
		svc := newService(newModels(), service.WithHistory(store), service.WithPublisher(pub),
			service.WithMaxHistoryLimit(2))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		Convey("When several predictions are made", func() {
			for i := 0; i < 2; i++ {
				_, err := svc.PredictPrice(ctx, validPrice())
				So(err, ShouldBeNil)
				_, err = svc.PredictSatisfaction(ctx, validSatisfaction())
				So(err, ShouldBeNil)
			}

			Convey("Then both sinks receive every prediction", func() {
				So(waitFor(func() bool { return pub.len() == 4 }), ShouldBeTrue)
				So(waitFor(func() bool {
					n, _ := store.Count(ctx)
					return n == 3
				}), ShouldBeTrue)
			})

			Convey("Then history limits are clamped and validated", func() {
				So(waitFor(func() bool { return pub.len() == 4 }), ShouldBeTrue)

				h, err := svc.History(ctx, "", 50)
				So(err, ShouldBeNil)
				So(h, ShouldHaveLength, 2)

				_, err = svc.History(ctx, "", -1)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)

				_, err = svc.History(ctx, types.Task("weather"), 1)
				So(errors.Is(err, types.ErrUnknownTask), ShouldBeTrue)
			})
		})
	})
}

func TestService_PriceDistribution(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without a price dataset", t, func() {
		svc := newService(newModels())
		_, err := svc.PriceDistribution(ctx, 10)
		So(errors.Is(err, service.ErrNotConfigured), ShouldBeTrue)
	})

	Convey("Given a service with a price dataset", t, func() {
		prices := &mockPrices{}
		prices.On("Histogram", mock.Anything).Return(dataset.Histogram{Bins: 30}, nil)
		svc := newService(newModels(), service.WithPriceData(prices), service.WithHistogramBins(30))

		Convey("When no bin count is given", func() {
			h, err := svc.PriceDistribution(ctx, 0)

			Convey("Then the default is used", func() {
				So(err, ShouldBeNil)
				So(h.Bins, ShouldEqual, 30)
				So(prices.AssertCalled(t, "Histogram", 30), ShouldBeTrue)
			})
		})

		Convey("When too many bins are asked for", func() {
			_, err := svc.PriceDistribution(ctx, 1000)

			Convey("Then the request is rejected", func() {
				So(errors.Is(err, dataset.ErrInvalidBins), ShouldBeTrue)
				So(prices.AssertNotCalled(t, "Histogram", mock.Anything), ShouldBeTrue)
			})
		})
	})
}

func TestService_Form(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("Then each task has its form", func() {
			for _, task := range types.Tasks() {
				f, err := svc.Form(task)
				So(err, ShouldBeNil)
				So(f.Task, ShouldEqual, string(task))
				So(f.Fields, ShouldNotBeEmpty)
			}
			_, err := svc.Form("weather")
			So(errors.Is(err, types.ErrUnknownTask), ShouldBeTrue)
		})
	})
}
