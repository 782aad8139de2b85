package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
)

// Default memory store configuration constants.
const (
	defaultCapacity              = 1_000
	defaultMetricsUpdateInterval = 5 * time.Second
)

// MemoryStore keeps the most recent predictions in a fixed-size ring.
type MemoryStore struct {
	mu       sync.RWMutex
	ring     []model.Prediction
	next     int // slot the next Save writes
	size     int
	slotByID map[string]int

	capacity              int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a ring-backed store and starts its metrics
// updater; Close stops it.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		capacity:              defaultCapacity,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]model.Prediction, s.capacity)
	s.slotByID = make(map[string]int, s.capacity)
	s.stopChan = make(chan struct{})

	s.startMetricsUpdater(ctx)
	return s
}

// Capacity returns the maximum number of predictions kept.
func (s *MemoryStore) Capacity() int { return s.capacity }

// Save implements Store.Save in O(1).
func (s *MemoryStore) Save(ctx context.Context, p model.Prediction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if p.ID == "" {
		return fmt.Errorf("save prediction: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isClosed() {
		return ErrClosed
	}
	if _, ok := s.slotByID[p.ID]; ok {
		return nil
	}

	if s.size == s.capacity {
		delete(s.slotByID, s.ring[s.next].ID)
	} else {
		s.size++
	}
	s.ring[s.next] = p
	s.slotByID[p.ID] = s.next
	s.next = (s.next + 1) % s.capacity
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, fmt.Errorf("context cancelled: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slotByID[id]
	if !ok {
		return model.Prediction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.ring[slot], nil
}

// Recent implements Store.Recent by walking the ring backwards from the
// newest slot.
func (s *MemoryStore) Recent(ctx context.Context, task types.Task, limit int) ([]model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Prediction, 0, min(limit, s.size))
	for i := 1; i <= s.size && len(out) < limit; i++ {
		p := s.ring[(s.next-i+s.capacity)%s.capacity]
		if task != "" && p.Task != task {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size, nil
}

// Close stops the metrics updater. Later Saves fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) isClosed() bool {
	select {
	case <-s.stopChan:
		return true
	default:
		return false
	}
}

// startMetricsUpdater publishes the history size until ctx ends or the
// store is closed.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				n, _ := s.Count(ctx)
				metrics.UpdateHistorySize(n)
			}
		}
	}()
}

var _ Store = (*MemoryStore)(nil)
