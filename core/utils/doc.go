// Package utils provides small parsing helpers shared by the CLI commands.
package utils
