// Package auth resolves API keys for model providers. Keys are looked up on
// every call so a key saved while the process runs is used immediately.
package auth
