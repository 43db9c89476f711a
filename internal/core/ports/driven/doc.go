// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SignatureStore: Slide signature configuration
//   - PlacementExtractor: Turns placement slip bytes into PlacementData
//   - FileStore: Fetches and stores document bytes (Drive, local disk)
//   - JobStore: Processing audit persistence
//
// # Campaign Interfaces
//
// Only needed when running outbound campaigns:
//
//   - CampaignStore: Campaign and recipient persistence
//   - RecipientSource: Loads recipients from a spreadsheet
//   - Mailer: Sends one message
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
