package contracts

import "errors"

var (
	// ErrPartnerNotFound is returned when a partner ID resolves to nothing.
	// Callers receive it as-is; no empty snapshot is fabricated.
	ErrPartnerNotFound = errors.New("partner not found")

	// ErrInvalidPeriod is returned for a period range whose end precedes
	// its start, before any data is fetched.
	ErrInvalidPeriod = errors.New("invalid period range: end before start")

	// ErrActivityUnavailable marks a transient failure of the underlying
	// data store, distinct from "no records found".
	ErrActivityUnavailable = errors.New("activity store unavailable")
)
