// Package service provides the domain services of the CSRF guard.
//
// Services hold the business rules and reach storage only through the
// interfaces declared here:
//
//   - GuardService: issue and validate-and-consume one-time tokens, sweep
//   - Sweeper: periodic background sweep of expired tokens
//   - UnitService: medicine unit CRUD, the sample resource behind the guard
//
// Services are safe for concurrent use.
package service
