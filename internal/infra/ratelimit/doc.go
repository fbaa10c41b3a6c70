// Package ratelimit keeps one token bucket per client and forgets clients
// that stop sending requests.
package ratelimit
