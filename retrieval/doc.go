// Package retrieval turns user questions into ranked, filtered chunk lists.
//
// The Retriever embeds the query text, asks the vector index for nearby
// chunks under a metadata filter, converts distances to relevance scores
// via 1/(1+distance), drops matches below the relevance threshold, and
// ranks what remains. Transient index failures are retried with
// exponential backoff.
package retrieval
