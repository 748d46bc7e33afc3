package schemas

import (
	_ "embed"
)

// ExperienceLedgerSchema is the JSON Schema of the experience ledger file.
//
//go:embed experience_ledger.schema.json
var ExperienceLedgerSchema string

// ValidateExperienceLedger checks the ledger file content before decoding.
func ValidateExperienceLedger(document []byte) error {
	return ValidateDocument(ExperienceLedgerSchema, document)
}
