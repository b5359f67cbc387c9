// Package netclient builds the HTTP client shared by the catalog resolver and
// the download scheduler.
//
// All transport policy lives here: connection and TLS timeouts, the optional
// proxy applied to every outgoing request, and connection pool sizing tuned for
// many small concurrent downloads. Per-fetch deadlines are the caller's job and
// are applied through request contexts, not through http.Client.Timeout, so a
// large download is bounded by progress rather than a single global timer.
package netclient
