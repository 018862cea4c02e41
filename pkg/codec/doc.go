// Package codec implements the canonical compact JSON encoding used for
// structured response bodies, request bodies and persisted session data.
//
// The encoding is plain JSON with two differences from encoding/json defaults:
// output is compact and HTML characters are not escaped, and calendar dates
// travel as a tagged object:
//
//	{"_date":"2024-03-15"}
//
// Decode turns such objects back into [Date] values and keeps numbers as
// [encoding/json.Number] so integers survive a round trip unchanged.
package codec
