package hrms

import "context"

// RelationalStore provides typed lookups against the HRMS database. All name
// matching is exact and case-insensitive. Lookups that find nothing return
// (nil, nil) rather than an error.
type RelationalStore interface {
	// ActiveJobs returns up to ActiveJobsLimit jobs in active status.
	ActiveJobs(ctx context.Context) ([]*Job, error)

	// CompanyInfo returns the sections whose names match the given list,
	// case-insensitive.
	CompanyInfo(ctx context.Context, sectionNames []string) ([]*CompanyInfoSection, error)

	// CandidateByName returns the candidate with the exact
	// (first_name, last_name) pair, or nil when absent.
	CandidateByName(ctx context.Context, firstName, lastName string) (*Candidate, error)

	// CandidateByUserID returns the candidate owned by the given account.
	CandidateByUserID(ctx context.Context, userID string) (*Candidate, error)

	// ApplicationsByCandidateName returns the status join rows for the named
	// candidate.
	ApplicationsByCandidateName(ctx context.Context, firstName, lastName string) ([]*Application, error)

	// ApplicationsByUserID returns the status join rows for the candidate
	// owned by the given account.
	ApplicationsByUserID(ctx context.Context, userID string) ([]*Application, error)
}

// DocumentStore provides similarity search over ingested HR records.
// Ingestion itself lives outside this repository.
type DocumentStore interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]*Document, error)
}
