// Package authz decides what happens to a request from its route class and the caller's
// session state. The decisions live in a table so every redirect rule is visible at once.
package authz

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

type RouteClass int

const (
	Public RouteClass = iota
	SignIn
	Dashboard
	API
	Account
)

func (c RouteClass) String() string {
	switch c {
	case Public:
		return "public"
	case SignIn:
		return "signin"
	case Dashboard:
		return "dashboard"
	case API:
		return "api"
	case Account:
		return "account"
	}
	return fmt.Sprintf("RouteClass(%d)", int(c))
}

type State int

const (
	Anonymous State = iota
	Member
	Admin
)

// StateOf maps a principal (nil when no valid session) to its state.
func StateOf(p *model.Principal) State {
	switch {
	case p == nil:
		return Anonymous
	case p.IsAdmin():
		return Admin
	default:
		return Member
	}
}

type Action int

const (
	Allow Action = iota
	Redirect
	Deny
)

// Decision is what to do with a request. Location is set for Redirect and Status for Deny.
type Decision struct {
	Action   Action
	Location string
	Status   int
}

func allow() Decision             { return Decision{Action: Allow} }
func redirect(to string) Decision { return Decision{Action: Redirect, Location: to} }
func deny(status int) Decision    { return Decision{Action: Deny, Status: status} }

type Policy map[RouteClass]map[State]Decision

const (
	SignInPath    = "/auth/signin"
	DashboardPath = "/dashboard"
	HomePath      = "/"
)

// DefaultPolicy is the dashboard's access table.
func DefaultPolicy() Policy {
	return Policy{
		Public: {
			Anonymous: allow(),
			Member:    allow(),
			Admin:     allow(),
		},
		SignIn: {
			Anonymous: allow(),
			Member:    redirect(DashboardPath),
			Admin:     redirect(DashboardPath),
		},
		Dashboard: {
			Anonymous: redirect(SignInPath),
			Member:    redirect(HomePath),
			Admin:     allow(),
		},
		API: {
			Anonymous: deny(http.StatusUnauthorized),
			Member:    deny(http.StatusForbidden),
			Admin:     allow(),
		},
		Account: {
			Anonymous: deny(http.StatusUnauthorized),
			Member:    allow(),
			Admin:     allow(),
		},
	}
}

// Decide looks up the decision for (class, state). Pairs missing from the table are denied.
func (p Policy) Decide(class RouteClass, state State) Decision {
	if row, ok := p[class]; ok {
		if d, ok := row[state]; ok {
			return d
		}
	}
	if state == Anonymous {
		return deny(http.StatusUnauthorized)
	}
	return deny(http.StatusForbidden)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the caller, or nil for an anonymous request.
func FromContext(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(principalKey{}).(*model.Principal)
	return p
}
