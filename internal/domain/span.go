package domain

import (
	"context"
	"encoding/json"
	"time"
)

type Span struct {
	Name    string    `json:"name"`
	startTs time.Time `json:"-"`

	Elapsed *int64 `json:"elapsed"`
}

type contextKey string

const ContextProfileKey contextKey = "performanceProfile"

// Profile is an ordered list of pipeline stage timings.
type Profile struct {
	Spans   []*Span `json:"spans"`
	startTs time.Time
	TotalMs *int64 `json:"totalMs"`
}

func NewProfile() (newProfile *Profile, endNewProfile func()) {
	newProfile = &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}
	return newProfile, newProfile.End
}

func NewCtxWithProfile(ctx context.Context) (context.Context, *Profile) {
	profile, _ := NewProfile()
	return context.WithValue(ctx, ContextProfileKey, profile), profile
}

// GetProfile returns the profile stored in ctx, or a detached one so callers
// never need to nil check.
func GetProfile(ctx context.Context) *Profile {
	if profile, ok := ctx.Value(ContextProfileKey).(*Profile); ok {
		return profile
	}
	profile, _ := NewProfile()
	return profile
}

func (p *Profile) End() {
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	if p.TotalMs == nil {
		t := time.Since(p.startTs).Milliseconds()
		p.TotalMs = &t
	}
}

func (s *Span) End() {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
	}
}

// StartNewSpan ends the last span and begins a new one
// not thread safe
func (p *Profile) StartNewSpan(name string) (newSpan *Span, endSpan func()) {
	newSpan = &Span{
		Name:    name,
		startTs: time.Now(),
	}
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	p.Spans = append(p.Spans, newSpan)
	return newSpan, newSpan.End
}

// Elapsed maps span name to milliseconds, for structured logging.
func (p *Profile) Elapsed() map[string]int64 {
	out := map[string]int64{}
	for _, s := range p.Spans {
		if s.Elapsed != nil {
			out[s.Name] = *s.Elapsed
		}
	}
	return out
}

func (p *Profile) ToJsonBytes() ([]byte, error) {
	bytes, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
