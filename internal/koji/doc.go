// Package koji resolves the latest usable build per distribution from koji
// build listings and compares an upstream package against its freeworld
// counterpart.
//
// Listings are scraped from the koji web interface search page. ParseBuilds
// yields builds lazily in page order, NewRegistry folds them into one build
// per distribution tag using first-seen-wins, and Comparator pairs the
// upstream and downstream registries into a Report. The koji subcommand in
// this package renders that report.
package koji
