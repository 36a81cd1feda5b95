// Package profile serves the signed-in user's own view: who they are, which
// roles they may manage and which navigation sections they see.
package profile
