// Package connectors provides transport implementations for the document
// and mail ports. Each connector knows how to move bytes over a specific
// backend (Google Drive, Gmail, the local filesystem).
package connectors
