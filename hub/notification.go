// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package hub

import "fmt"

// Kind is the kind of a filesystem change.
type Kind int

const (
	KindCreated Kind = iota
	KindUpdated
	KindRemoved
	KindRenamed
)

var kindNames = [...]string{
	KindCreated: "created",
	KindUpdated: "updated",
	KindRemoved: "removed",
	KindRenamed: "renamed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// Notification is an immutable description of one change. It is passed by
// value, so every subscriber gets its own copy.
type Notification struct {
	Kind Kind
	Path string
	// OldPath is set for KindRenamed only.
	OldPath string
}

func Created(path string) Notification { return Notification{Kind: KindCreated, Path: path} }

func Updated(path string) Notification { return Notification{Kind: KindUpdated, Path: path} }

func Removed(path string) Notification { return Notification{Kind: KindRemoved, Path: path} }

func Renamed(oldPath, newPath string) Notification {
	return Notification{Kind: KindRenamed, Path: newPath, OldPath: oldPath}
}

// Message returns the text pushed to browsers. Every message is 12 bytes
// of ASCII so it fits a websocket frame without extended length.
func (n Notification) Message() string {
	switch n.Kind {
	case KindCreated:
		return "File created"
	case KindUpdated:
		return "File updated"
	case KindRemoved:
		return "File removed"
	default:
		return "File renamed"
	}
}

func (n Notification) String() string {
	if n.Kind == KindRenamed {
		return fmt.Sprintf("%s %s -> %s", n.Kind, n.OldPath, n.Path)
	}

	return fmt.Sprintf("%s %s", n.Kind, n.Path)
}
