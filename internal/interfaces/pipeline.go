package interfaces

import "context"

// Pipeline guarantees all data a report depends on exists and is fresh for a
// ticker. Ensure returns the resolved company name.
type Pipeline interface {
	Ensure(ctx context.Context, ticker, company string) (string, error)
}

// Reporter builds the posted analysis text for a company, consulting a
// short-TTL cache.
type Reporter interface {
	Generate(ctx context.Context, company, ticker string) (string, error)
}
