// Package session tracks live streaming sessions. The Registry is the only
// owner of the session map: it creates sessions, advances their status,
// expires them and finalizes their event channels.
package session
