package metrics

import (
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// strategy is one derivation attempt for a metric. ok=false means "this
// strategy did not produce a value" and the cascade advances.
type strategy struct {
	name string
	fn   func() (float64, bool)
}

// runCascade evaluates strategies in order and returns the first value that
// passes. A panicking strategy counts as a miss — cascades never propagate
// failures to the caller.
func runCascade(log *logger.Logger, metric string, strategies []strategy) (float64, bool) {
	for _, s := range strategies {
		value, ok := attempt(s)
		if !ok {
			continue
		}
		log.WithFields(map[string]interface{}{
			"metric":   metric,
			"strategy": s.name,
			"value":    value,
		}).Debug("cascade produced value")
		return value, true
	}

	log.WithField("metric", metric).Debug("cascade exhausted")
	return 0, false
}

func attempt(s strategy) (value float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			value, ok = 0, false
		}
	}()
	return s.fn()
}
