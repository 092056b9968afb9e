// Package x11 exposes an X11 display as a platform.Host. Top-level windows
// and their mapped descendants form the element tree, XTEST synthesizes
// pointer and key input, and the root window image backs screenshots.
//
// The host registers itself as "x11" on Linux; on other systems importing
// the package has no effect.
package x11
