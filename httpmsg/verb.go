// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package httpmsg

import (
	"strings"

	"github.com/pkg/errors"
)

// Verb is an HTTP request method.
type Verb int

const (
	VerbGet Verb = iota
	VerbHead
	VerbPost
	VerbPut
	VerbDelete
	VerbConnect
	VerbOptions
	VerbTrace
	VerbPatch
)

var verbNames = [...]string{
	VerbGet:     "GET",
	VerbHead:    "HEAD",
	VerbPost:    "POST",
	VerbPut:     "PUT",
	VerbDelete:  "DELETE",
	VerbConnect: "CONNECT",
	VerbOptions: "OPTIONS",
	VerbTrace:   "TRACE",
	VerbPatch:   "PATCH",
}

// ParseVerb resolves a method token, ignoring case.
func ParseVerb(token string) (Verb, error) {
	upper := strings.ToUpper(token)
	for v, name := range verbNames {
		if name == upper {
			return Verb(v), nil
		}
	}

	return 0, errors.Wrapf(ErrUnknownVerb, "%q", token)
}

// String returns the method token.
func (v Verb) String() string {
	if v < 0 || int(v) >= len(verbNames) {
		return "UNKNOWN"
	}

	return verbNames[v]
}
