// Package utils holds small helpers shared across graphwalk packages.
package utils
