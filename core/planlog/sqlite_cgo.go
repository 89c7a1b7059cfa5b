//go:build cgo

package planlog

import _ "github.com/mattn/go-sqlite3"
