// Package cli implements the kakeibo command tree.
//
// Every command shares one App: the root command's PersistentPreRunE loads
// configuration (file, KAKEIBO_ environment, flags), opens the local store
// and builds the sync, merge and backup services on top of it. Commands
// that only touch the local store work offline; sync, pull and watch talk
// to the summary server through the configured Provider.
package cli
