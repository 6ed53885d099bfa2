// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Psionic serves a static site and reloads connected browsers when files
// under the site change.
package main

import "github.com/wangtaoking1/psionic/app"

const description = `Psionic serves the files of a directory over HTTP and watches the
directory for changes. The index document gets a small script that opens a
websocket to /ws/notify; every change is pushed to it and the page reloads.`

func main() {
	opts := NewOptions()
	app.NewApp("psionic", "Psionic live-reload dev server",
		app.WithOptions(opts),
		app.WithDescription(description),
		app.WithNoArgs(),
		app.WithRunFunc(run(opts)),
		app.WithCommands(app.VersionCommand()),
	).Run()
}
