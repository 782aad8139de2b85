package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/mq/queue"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/mq/worker"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
	logging "github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

// recordingSink keeps every event it receives.
type recordingSink struct {
	mu     sync.Mutex
	events []model.Event
	fail   map[string]error
}

func (s *recordingSink) Write(_ context.Context, ev model.Event) error { //nolint:gocritic // hugeParam
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[ev.EventID]; ok {
		return err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.EventID
	}
	return out
}

func newEvent(id string) model.Event {
	return model.NewEvent(model.Prediction{ID: id, Task: types.TaskSatisfaction, Label: types.LabelSatisfied})
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

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker with two sinks", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		history := &recordingSink{}
		broker := &recordingSink{fail: map[string]error{"bad": errors.New("broker down")}}
		w := worker.NewInMemoryWorker(q, []worker.Sink{history, broker}, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When events are queued", func() {
			convey.So(q.Enqueue(ctx, newEvent("a")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, newEvent("bad")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, newEvent("b")), convey.ShouldBeNil)

			convey.Convey("Then every sink sees them and one failure does not stop the others", func() {
				convey.So(waitFor(func() bool { return len(history.ids()) == 3 }), convey.ShouldBeTrue)
				convey.So(history.ids(), convey.ShouldResemble, []string{"a", "bad", "b"})
				convey.So(waitFor(func() bool { return len(broker.ids()) == 2 }), convey.ShouldBeTrue)
				convey.So(broker.ids(), convey.ShouldResemble, []string{"a", "b"})
			})
		})

		convey.Convey("When the queue is closed", func() {
			_ = q.Close()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-w.Done():
				case <-time.After(2 * time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestSinkFunc(t *testing.T) {
	convey.Convey("Given a function sink", t, func() {
		var got string
		s := worker.SinkFunc(func(_ context.Context, ev model.Event) error {
			got = ev.EventID
			return nil
		})
		convey.So(s.Write(context.Background(), newEvent("x")), convey.ShouldBeNil)
		convey.So(got, convey.ShouldEqual, "x")
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		sink := &recordingSink{fail: map[string]error{"e-7": errors.New("constraint violation")}}
		pool := worker.NewPool(4, q, sink)
		ctx := context.Background()
		pool.Start(ctx)

		convey.Convey("When many events are queued and the pool shuts down", func() {
			for i := 0; i < 200; i++ {
				convey.So(q.Enqueue(ctx, newEvent(fmt.Sprintf("e-%d", i))), convey.ShouldBeNil)
			}
			err := pool.Shutdown(ctx)

			convey.Convey("Then the queue is drained before the workers stop", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(sink.ids()), convey.ShouldEqual, 199)

				stats := pool.Stats()
				convey.So(stats.Workers, convey.ShouldEqual, 4)
				convey.So(stats.Processed, convey.ShouldEqual, 199)
				convey.So(stats.Failed, convey.ShouldEqual, 1)
				convey.So(stats.Active, convey.ShouldEqual, 0)
			})

			convey.Convey("Then a second shutdown is a no-op", func() {
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool that was never started", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q)

		convey.Convey("Then shutdown returns at once and closes the queue", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
			convey.So(pool.Stats().Workers, convey.ShouldBeGreaterThan, 0)
		})
	})
}

func TestWorkerOptions(t *testing.T) {
	convey.Convey("Given worker options", t, func() {
		l := logging.Named("custom")
		w := worker.NewInMemoryWorker(queue.NewInMemoryQueue(), nil,
			worker.WithName(""),
			worker.WithLogger(l),
			worker.WithLogger(nil),
		)
		convey.So(w, convey.ShouldNotBeNil)
	})
}
