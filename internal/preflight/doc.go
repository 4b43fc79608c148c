// Package preflight provides readiness checks for the filesystem paths shelf
// depends on.
//
// The CLI "shelf status" command renders every result; "shelf run" and
// "shelf watch" only fail fast on the target check, since the organizer would
// abort on a missing target anyway and a clearer message helps.
package preflight
