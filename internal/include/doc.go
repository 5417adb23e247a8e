// SPDX-License-Identifier: MPL-2.0

// Package include loads a root rule file and drains its include work-list.
//
// References are classified by a substring test: anything containing "http"
// is fetched over HTTP(S) through a Fetcher; everything else is read from the
// local filesystem. Every resolved source is parsed into the same
// bakefile.Bakefile, so included variables and rules are appended to the
// shared sequences with no namespacing.
//
// Each canonical reference (absolute cleaned path or URL) is processed at most
// once per Resolver call, so include cycles and diamonds terminate.
package include
