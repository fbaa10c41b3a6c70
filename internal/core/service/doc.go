// Package service provides the sigstream domain services.
//
// Services hold the business rules and depend on storage only through the
// small interfaces they declare, so tests can pass hand-written fakes.
//
//   - MessageService: append to and read from message streams
//
// Each service operation makes at most one storage call. Errors returned by
// storage are passed through unchanged; codec failures are domain errors.
package service
