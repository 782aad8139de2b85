package smoke

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
)

const (
	dateLayout = "2006-01-02"
	dateSpan   = 120 // days after firstJourney
)

var firstJourney = time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)

// randomInt returns a uniform int in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateSubmissions builds count random submissions, alternating between
// the given forms.
func generateSubmissions(ctx context.Context, forms []features.Form, count int, stats *Stats) ([]Submission, error) {
	if len(forms) == 0 {
		return nil, fmt.Errorf("no forms to generate from")
	}
	logger.Get().Info(ctx, "generating submissions", logger.Int("count", count), logger.Int("forms", len(forms)))

	subs := make([]Submission, count)
	for i := range subs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		form := forms[i%len(forms)]
		subs[i] = Submission{Task: form.Task, Payload: generatePayload(form)}
	}
	stats.Generated = len(subs)
	return subs, nil
}

// generatePayload fills every field of form with a random value inside its
// declared bounds.
func generatePayload(form features.Form) map[string]any {
	out := make(map[string]any, len(form.Fields))
	for _, f := range form.Fields {
		out[f.Name] = generateValue(f)
	}
	return out
}

func generateValue(f features.FormField) any {
	switch f.Kind {
	case features.KindSelect:
		if len(f.Options) == 0 {
			return f.Default
		}
		opt := f.Options[randomInt(len(f.Options))]
		// Numeric selects (stop counts) travel as JSON numbers.
		if n, err := strconv.Atoi(opt); err == nil {
			return n
		}
		return opt
	case features.KindDate:
		return firstJourney.AddDate(0, 0, randomInt(dateSpan)).Format(dateLayout)
	default:
		lo, hi := 0, openFieldSpan
		if f.Min != nil {
			lo = int(*f.Min)
		}
		if f.Max != nil {
			hi = int(*f.Max)
		} else {
			hi = lo + openFieldSpan
		}
		return lo + randomInt(hi-lo+1)
	}
}
