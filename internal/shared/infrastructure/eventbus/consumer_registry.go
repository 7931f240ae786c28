package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ConsumerRegistry routes consumed events to consumers by binding pattern.
// Patterns follow topic exchange rules, so the in-process bus routes the
// same way the broker does: "*" matches one dot-separated word and "#"
// matches zero or more.
type ConsumerRegistry struct {
	mu       sync.RWMutex
	bindings map[string][]EventConsumer
	logger   *slog.Logger
}

// NewConsumerRegistry creates an empty registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		bindings: make(map[string][]EventConsumer),
		logger:   logger,
	}
}

// Register binds consumer to each pattern it declares.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range consumer.EventTypes() {
		r.bindings[pattern] = append(r.bindings[pattern], consumer)
		r.logger.Debug("registered consumer", "binding", pattern)
	}
}

// Consumers returns the consumers whose bindings match routingKey. A
// consumer bound by several matching patterns is returned once.
func (r *ConsumerRegistry) Consumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []EventConsumer
	seen := make(map[EventConsumer]bool)
	for _, pattern := range r.sortedPatterns() {
		if !MatchRoutingKey(pattern, routingKey) {
			continue
		}
		for _, c := range r.bindings[pattern] {
			if !seen[c] {
				seen[c] = true
				matched = append(matched, c)
			}
		}
	}
	return matched
}

// EventTypes returns the bound patterns, sorted.
func (r *ConsumerRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedPatterns()
}

// sortedPatterns requires mu.
func (r *ConsumerRegistry) sortedPatterns() []string {
	patterns := make([]string, 0, len(r.bindings))
	for p := range r.bindings {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// ConsumerCount returns the number of bindings across all patterns.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, consumers := range r.bindings {
		n += len(consumers)
	}
	return n
}

// Dispatch hands event to every matching consumer. Every consumer runs even
// when an earlier one fails, and the failures are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.Consumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for routing key", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MatchRoutingKey reports whether a topic binding pattern matches key.
func MatchRoutingKey(pattern, key string) bool {
	if pattern == key {
		return true
	}
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(rest, key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
