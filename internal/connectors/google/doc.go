// Package google provides shared infrastructure for Google API connectors.
//
// This package contains common utilities used by the drive and gmail
// connectors including:
//   - TokenSource construction from stored OAuth credentials
//   - Service factories for creating Google API clients
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
// Each Google connector (drive, gmail) uses this package to create
// authenticated API clients:
//
//	ts, err := google.NewTokenSource(ctx, configStore)
//	svc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
// Google connectors use these scopes:
//   - https://www.googleapis.com/auth/userinfo.email (non-sensitive)
//   - https://www.googleapis.com/auth/drive.file (recommended)
//   - https://www.googleapis.com/auth/gmail.send (restricted)
//
// For user-created internal apps, restricted scopes don't require verification.
package google
