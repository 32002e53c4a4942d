// Package core runs CSV parses and manages stored parse runs.
//
// It sits between the transports (HTTP handlers, the CLI) and the pure
// parser in [csvparse]. Nothing here knows about HTTP.
//
// # Parsing
//
// [Service.Parse] takes a [ParseRequest], reads the input through
// [ReadInput] (size limit, BOM handling, legacy encodings), parses it with
// the requested coercion and returns a [ParseResult]. Concurrent parses are
// bounded by a [ParseLimiter]; callers that cannot get a slot before the
// configured wait time receive [ErrTooManyParses].
//
//	svc, err := core.NewService(nil, cfg.Parse)
//	result, err := svc.Parse(ctx, core.ParseRequest{
//	    Name:     "people.csv",
//	    Input:    file,
//	    Coercion: "typed",
//	})
//
// # Persistence
//
// When a [RunStore] is supplied, runs can be saved and queried later.
// [Store] is the PostgreSQL implementation. Without a store, persistence
// requests and run queries fail with [ErrPersistenceDisabled].
//
// # Errors
//
// [MapError] turns any error returned here into a [UserMessage] with a
// stable code (FILE002 for malformed CSV, RUN001 for unknown runs, and so
// on) so transports can show something actionable.
package core
