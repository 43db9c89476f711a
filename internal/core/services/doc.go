// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// ProcessService runs the deck population pipeline; CampaignService
// runs outbound mail campaigns.
package services
