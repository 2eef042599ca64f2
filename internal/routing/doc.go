// Package routing compiles route patterns, merges the routes of many plugins
// into immutable tables and resolves request paths against a table snapshot.
//
// Pattern grammar:
//
//	/                 root
//	/feed             literal segments
//	/feed/:id         named parameter, matches one segment
//	/assets/*path     catch-all, last segment only, matches one or more segments
//
// Literal segments outrank parameters, which outrank catch-alls, at the first
// position where two patterns differ.
package routing
