// Package intake defines the office survey flow: building and unit
// selection, claimant registration, claim creation, and final review. Steps
// with remote mutations delegate to the step service and finalize the
// identifiers they receive
package intake
