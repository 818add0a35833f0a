// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package divsim

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// A Connection connects a part's pin PP to a pin CP in its host chip.
type Connection struct {
	PP string
	CP string
}

// ParseConnections parses a connection configuration like "partPin1=chipPin1,
// partPin2=chipPin2".
func ParseConnections(c string) ([]Connection, error) {
	var conns []Connection
	if strings.TrimSpace(c) == "" {
		return nil, nil
	}
	for _, item := range strings.Split(c, ",") {
		eq := strings.IndexByte(item, '=')
		if eq < 0 {
			return nil, errors.Errorf("in %q: expected '=' in %q", c, strings.TrimSpace(item))
		}
		pp, cp := strings.TrimSpace(item[:eq]), strings.TrimSpace(item[eq+1:])
		if !isIdent(pp) {
			return nil, errors.Errorf("in %q: invalid part pin name %q", c, pp)
		}
		if !isIdent(cp) {
			return nil, errors.Errorf("in %q: invalid chip pin name %q", c, cp)
		}
		conns = append(conns, Connection{pp, cp})
	}
	return conns, nil
}

// ParseIOSpec splits a pin list like "a, b, sel" into individual pin names.
func ParseIOSpec(names string) ([]string, error) {
	var out []string
	if strings.TrimSpace(names) == "" {
		return nil, nil
	}
	for _, n := range strings.Split(names, ",") {
		n = strings.TrimSpace(n)
		if !isIdent(n) {
			return nil, errors.Errorf("in %q: invalid pin name %q", names, n)
		}
		out = append(out, n)
	}
	return out, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
