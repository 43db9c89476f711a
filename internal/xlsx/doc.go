// Package xlsx extracts placement slip data and campaign recipient
// lists from spreadsheet workbooks.
//
// Placement slips are broker-authored, so cell positions drift between
// renewals. Extraction anchors on labels rather than fixed coordinates:
// a field's value is whatever sits right of its label cell, and block
// sections (basis of cover, schedule of benefits) are walked row by row
// from their heading until the block ends.
package xlsx
