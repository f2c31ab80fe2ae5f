// Package echotests contains the scenarios that check an echo service reflects back the query
// parameters, headers, and bodies it receives.
package echotests
