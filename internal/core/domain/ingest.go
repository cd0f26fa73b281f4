package domain

// IngestReport summarises one ingestion batch.
type IngestReport struct {
	// Records is the number of raw records received.
	Records int

	// Products is the number of distinct products upserted.
	Products int

	// Errors lists the records that were skipped.
	Errors []*IngestionError
}

// Skipped returns the number of dropped records.
func (r *IngestReport) Skipped() int {
	return len(r.Errors)
}
