package duckblog

import "embed"

// EmbeddedAssets contains assets shipped with the binary and served under
// /assets/: duck.svg (used by the duck macro) and style.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
