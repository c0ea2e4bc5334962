// Package workflow orchestrates one scan from decoded code to confirmed
// catalog record.
//
// A decoded code first checks the local catalog; a hit short-circuits the
// whole pipeline because the record already exists. On a miss the workflow
// resolves the code remotely and lands in either a found candidate awaiting
// confirmation or a manual-entry skeleton carrying only the scanned code.
// Confirmation validates the record and upserts it by code, so re-confirming
// a scan can never create a duplicate.
//
// Each scan carries a generation number. Resetting the workflow or starting a
// newer scan bumps the generation, and any resolution still in flight for an
// older generation is discarded when it completes.
package workflow
