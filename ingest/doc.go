// Package ingest provides pipeline orchestration for processing manual documents.
//
// The Pipeline type manages the ingestion workflow for uploaded documents:
//   - Registering the document record in pending state
//   - Extracting and normalizing text
//   - Splitting text into overlapping chunks with metadata hints
//   - Embedding chunks and storing them in the vector index
//
// Processing runs asynchronously on a worker pool. Failures are recorded on
// the document record rather than returned to the uploader, and any chunks
// indexed by a failed job are rolled back.
package ingest
