// Package push classifies device tokens by provider and delivers
// notification payloads to the mobile and browser push services.
package push

import "context"

// Payload is one notification as handed to a provider.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// OutcomeKind classifies the result of one delivery attempt.
type OutcomeKind string

const (
	// OutcomeOK means the provider accepted the message for the token.
	OutcomeOK OutcomeKind = "ok"
	// OutcomeUnregistered means the provider reports the token dead; the
	// owning record should be cleaned up.
	OutcomeUnregistered OutcomeKind = "unregistered"
	// OutcomeTransient covers everything retryable: provider errors,
	// timeouts, network faults. Retry policy belongs to the caller.
	OutcomeTransient OutcomeKind = "transient_error"
)

// TokenOutcome is the per-token result of a dispatch attempt.
type TokenOutcome struct {
	Token  string
	Kind   OutcomeKind
	Detail string
}

// BatchResult aggregates per-token outcomes for one provider batch.
// Failures are data, never errors: a batch can partially fail and the
// caller needs to see exactly which tokens did.
type BatchResult struct {
	SuccessCount int
	FailureCount int
	PerToken     []TokenOutcome
}

func (r *BatchResult) add(token string, kind OutcomeKind, detail string) {
	r.PerToken = append(r.PerToken, TokenOutcome{Token: token, Kind: kind, Detail: detail})
	if kind == OutcomeOK {
		r.SuccessCount++
	} else {
		r.FailureCount++
	}
}

// addAll records the same outcome for every token, used when a whole
// provider call fails before per-token results exist.
func (r *BatchResult) addAll(tokens []string, kind OutcomeKind, detail string) {
	for _, t := range tokens {
		r.add(t, kind, detail)
	}
}

// Unregistered returns the tokens the provider reported dead.
func (r *BatchResult) Unregistered() []string {
	var dead []string
	for _, o := range r.PerToken {
		if o.Kind == OutcomeUnregistered {
			dead = append(dead, o.Token)
		}
	}
	return dead
}

// Dispatcher delivers one payload to a batch of same-provider tokens.
// An empty batch is a no-op success with zero counts. Implementations do
// not retry and never propagate provider faults as errors.
type Dispatcher interface {
	Dispatch(ctx context.Context, tokens []string, payload Payload) BatchResult
}
