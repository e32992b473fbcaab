package wire

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verb is an HTTP method, kept as a distinct type so callers can't pass an
// arbitrary string where the body-vs-query decision (BodyBearing) matters.
type Verb string

const (
	GET    Verb = "GET"
	POST   Verb = "POST"
	PUT    Verb = "PUT"
	DELETE Verb = "DELETE"
)

// BodyBearing reports whether this verb carries its canonical query as a
// request body rather than a URL query string: POST and PUT are body
// verbs; GET and DELETE are URL-query verbs. Binance futures always puts
// the canonical query on the URL for GET/DELETE and in the form body for
// POST/PUT, so this keys purely off the verb.
func (v Verb) BodyBearing() bool {
	return v == POST || v == PUT
}

// SignedRequest is the fully-assembled, ready-to-send shape of a request:
// final path (with "?query" appended for URL-query verbs), an optional
// form body, and the headers to attach.
type SignedRequest struct {
	Path    string
	Body    string // x-www-form-urlencoded body, empty for URL-query verbs
	Headers map[string]string
}

// Sign canonicalizes args per §4.1, appends a `signature=` parameter for
// TRADE/USER_DATA classes, and assembles the final path/body/headers. args
// must already contain "timestamp" for classes that require a signature —
// Sign does not add it, since the caller (the REST pipeline) owns the
// clock.
func Sign(verb Verb, basePath string, args *ArgList, class SecurityClass, creds Credentials) SignedRequest {
	path := basePath
	for _, seg := range args.PathSegments() {
		path += "/" + seg
	}

	query := args.BuildQuery()

	if class.RequiresSignature() {
		sig := hmacHex(query, creds.Secret)
		if query != "" {
			query += "&"
		}
		query += "signature=" + sig
	}

	headers := make(map[string]string, 2)
	if class.RequiresAPIKey() {
		headers["X-MBX-APIKEY"] = creds.Key
	}

	req := SignedRequest{Headers: headers}
	if verb.BodyBearing() {
		req.Path = path
		req.Body = query
		if query != "" {
			headers["Content-Type"] = "application/x-www-form-urlencoded"
		}
	} else {
		if query != "" {
			path += "?" + query
		}
		req.Path = path
	}
	return req
}

// hmacHex computes the lowercase hex-encoded HMAC-SHA256 of message under
// secret.
func hmacHex(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
