// Package html serves entities as HTML pages on their canonical paths.
package html
