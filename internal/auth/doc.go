// Package auth exchanges user credentials for an access token at the SSO
// service and inspects token expiry for refresh scheduling.
package auth
