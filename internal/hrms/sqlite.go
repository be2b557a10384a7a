package hrms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLStore is a RelationalStore backed by a sqlite database laid out like the
// HRMS schema: jobs, candidates, applications, company_info.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens the sqlite database at the given path.
func OpenSQLStore(path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// NewSQLStore wraps an existing database handle. Used by tests.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) ActiveJobs(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, department, experience_level, required_skills,
		       description, status, location, salary_min
		FROM jobs
		WHERE status = ?
		LIMIT ?`, JobStatusActive, ActiveJobsLimit)
	if err != nil {
		return nil, fmt.Errorf("query active jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job := &Job{}
		if err := rows.Scan(
			&job.ID, &job.Title, &job.Department, &job.ExperienceLevel,
			&job.RequiredSkills, &job.Description, &job.Status,
			&job.Location, &job.SalaryMin,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// Documents loads the optional documents table for similarity search.
// Databases without the table yield no documents rather than an error, so
// document context stays opt-in per deployment.
func (s *SQLStore) Documents(ctx context.Context) ([]*Document, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'documents'`).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check documents table: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content, doc_type, COALESCE(status, '') FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var content, docType, status string
		if err := rows.Scan(&content, &docType, &status); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc := &Document{Content: content, Metadata: map[string]string{"type": docType}}
		if status != "" {
			doc.Metadata["status"] = status
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (s *SQLStore) CompanyInfo(ctx context.Context, sectionNames []string) ([]*CompanyInfoSection, error) {
	if len(sectionNames) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sectionNames)), ",")
	args := make([]any, 0, len(sectionNames))
	for _, name := range sectionNames {
		args = append(args, strings.ToLower(strings.TrimSpace(name)))
	}

	query := fmt.Sprintf(
		"SELECT section_name, content FROM company_info WHERE LOWER(section_name) IN (%s)",
		placeholders,
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query company info: %w", err)
	}
	defer rows.Close()

	var sections []*CompanyInfoSection
	for rows.Next() {
		section := &CompanyInfoSection{}
		if err := rows.Scan(&section.SectionName, &section.Content); err != nil {
			return nil, fmt.Errorf("scan company info: %w", err)
		}
		sections = append(sections, section)
	}

	return sections, rows.Err()
}

func (s *SQLStore) CandidateByName(ctx context.Context, firstName, lastName string) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, first_name, last_name, resume_text
		FROM candidates
		WHERE LOWER(first_name) = ? AND LOWER(last_name) = ?
		LIMIT 1`,
		strings.ToLower(strings.TrimSpace(firstName)),
		strings.ToLower(strings.TrimSpace(lastName)),
	)
	return scanCandidate(row)
}

func (s *SQLStore) CandidateByUserID(ctx context.Context, userID string) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, first_name, last_name, resume_text
		FROM candidates
		WHERE user_id = ?
		LIMIT 1`, userID)
	return scanCandidate(row)
}

func scanCandidate(row *sql.Row) (*Candidate, error) {
	candidate := &Candidate{}
	err := row.Scan(
		&candidate.ID, &candidate.UserID, &candidate.FirstName,
		&candidate.LastName, &candidate.ResumeText,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	return candidate, nil
}

const applicationJoin = `
	SELECT a.id, a.job_id, a.candidate_id,
	       c.first_name || ' ' || c.last_name, j.title, a.status
	FROM applications a
	JOIN jobs j ON a.job_id = j.id
	JOIN candidates c ON a.candidate_id = c.id`

func (s *SQLStore) ApplicationsByCandidateName(ctx context.Context, firstName, lastName string) ([]*Application, error) {
	rows, err := s.db.QueryContext(ctx,
		applicationJoin+` WHERE LOWER(c.first_name) = ? AND LOWER(c.last_name) = ?`,
		strings.ToLower(strings.TrimSpace(firstName)),
		strings.ToLower(strings.TrimSpace(lastName)),
	)
	if err != nil {
		return nil, fmt.Errorf("query applications by name: %w", err)
	}
	return scanApplications(rows)
}

func (s *SQLStore) ApplicationsByUserID(ctx context.Context, userID string) ([]*Application, error) {
	rows, err := s.db.QueryContext(ctx, applicationJoin+` WHERE c.user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query applications by user: %w", err)
	}
	return scanApplications(rows)
}

func scanApplications(rows *sql.Rows) ([]*Application, error) {
	defer rows.Close()

	var applications []*Application
	for rows.Next() {
		app := &Application{}
		if err := rows.Scan(
			&app.ApplicationID, &app.JobID, &app.CandidateID,
			&app.CandidateName, &app.JobTitle, &app.Status,
		); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		applications = append(applications, app)
	}

	return applications, rows.Err()
}
