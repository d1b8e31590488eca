// Package checks holds the individual integrity checks.
package checks
