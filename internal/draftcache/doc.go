// Package draftcache keeps unsaved drafts on disk between CLI invocations.
//
// Drafts are stored as JSON files under <base>/<owner>/<date>, one per
// (owner, date) pair, so a draft written with "cafofo write --keep" can be
// restored and saved later. The cache never talks to the gateway.
package draftcache
