// Package middleware decorates action journals with redaction and encryption.
package middleware

import "github.com/aretw0/asyncfetch/pkg/ports"

// Middleware allows wrapping a Journal to add behavior.
type Middleware func(ports.Journal) ports.Journal

// Chain applies middlewares so that the first one sees each action first.
func Chain(base ports.Journal, mws ...Middleware) ports.Journal {
	j := base
	for i := len(mws) - 1; i >= 0; i-- {
		j = mws[i](j)
	}
	return j
}
