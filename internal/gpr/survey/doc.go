// Package survey runs the clustering pipeline over a stream of radar rows:
// threshold and depth-window filtering, incremental clustering, position
// recording and footprint extraction.
//
// Rows arrive through RowSource. Decoding instrument files is someone
// else's job; internal/db.SurveyStore is the production source.
package survey
