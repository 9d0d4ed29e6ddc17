// Package module names the storefront verticals that partition the catalog,
// order and status APIs.
package module

import (
	"errors"
	"strings"
)

type Module string

const (
	Shop    Module = "shop"
	Service Module = "service"
)

var ErrUnknown = errors.New("unknown module")

// All lists the modules in routing order.
var All = []Module{Service, Shop}

func Parse(s string) (Module, error) {
	switch Module(strings.ToLower(strings.TrimSpace(s))) {
	case Shop:
		return Shop, nil
	case Service:
		return Service, nil
	}
	return "", ErrUnknown
}

func (m Module) Valid() bool { return m == Shop || m == Service }

// Prefix is the API path prefix the module's resources are mounted under.
// The service vertical predates the shop and kept the bare /api prefix.
func (m Module) Prefix() string {
	if m == Shop {
		return "/api/shop"
	}
	return "/api"
}

func (m Module) String() string { return string(m) }
