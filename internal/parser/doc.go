// Package parser fetches pages and extracts the words and links they contain.
//
// The crawler depends only on the PageParser interface: given a URL it returns
// per-page word counts and the outbound links, or an explicit error. The
// HTMLParser implementation fetches over HTTP (or from disk for file:// URLs),
// parses the document with golang.org/x/net/html and extracts text and anchors
// through goquery. Only file: pages may lead to other file: URLs.
//
// Design decision: Parsing is a pure function of the URL from the crawler's
// point of view because:
//  1. The traversal engine stays testable with an in-memory fake
//  2. Transport concerns (proxy, timeouts, body limits) live in one place
//  3. Any other document format can be plugged in behind the same interface
package parser
