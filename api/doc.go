// Package api is a small client for the QCS REST API.
//
// It covers the calls the runtime needs to run on hardware: fetching a
// processor's instruction set architecture, translating native Quil into an
// encrypted executable, creating an engagement (the credentials and address
// of a reserved processor endpoint) and listing processors.
//
// Requests authenticate with the configuration's bearer token. A 401 causes
// one token refresh followed by a single retry. Failures are returned as
// classified errors from the errors package.
package api
