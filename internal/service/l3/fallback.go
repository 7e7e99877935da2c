package l3_service

import (
	"context"
	"errors"
	"strings"
)

var errNoUsableSource = errors.New("no usable source")

// source is one named way of obtaining a value. ok=false means the source
// had nothing usable; err explains why when there is a reason to log.
type source[T any] struct {
	Name string
	Get  func(ctx context.Context) (value T, ok bool, err error)
}

// firstAvailable tries sources in order and returns the first usable value
// with the name of the source it came from. The reasons for every skipped
// source are returned so callers can log the degradation.
func firstAvailable[T any](ctx context.Context, sources []source[T]) (T, string, []string, error) {
	skipped := []string{}
	for _, s := range sources {
		value, ok, err := s.Get(ctx)
		if ok && err == nil {
			return value, s.Name, skipped, nil
		}
		reason := s.Name + ": unavailable"
		if err != nil {
			reason = s.Name + ": " + err.Error()
		}
		skipped = append(skipped, reason)
	}
	var zero T
	return zero, "", skipped, errNoUsableSource
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, "; ")
}
