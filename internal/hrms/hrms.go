package hrms

import (
	"strings"
)

const (
	// JobStatusActive marks a job open for applications. Only jobs in this
	// status are ever surfaced for "current/available/open" queries.
	JobStatusActive = "active"

	// ActiveJobsLimit caps how many jobs a single listing query returns.
	ActiveJobsLimit = 10
)

// Job is one listing from the jobs table. The ID is internal and must never
// appear in user-facing text.
type Job struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title,omitempty"`
	Department      string `json:"department,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	RequiredSkills  string `json:"required_skills,omitempty"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status,omitempty"`
	Location        string `json:"location,omitempty"`
	SalaryMin       int    `json:"salary_min,omitempty"`
}

// IsActive reports whether the job is open for applications.
func (j *Job) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(j.Status), JobStatusActive)
}

// Candidate is a profile row. UserID links the profile to an authenticated
// account for self-scoped lookups.
type Candidate struct {
	ID         string `json:"id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	ResumeText string `json:"resume_text,omitempty"`
}

// FullName returns the candidate's display name.
func (c *Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Application is one row of the applications/jobs/candidates join. Both
// ApplicationID and JobID are internal identifiers.
type Application struct {
	ApplicationID string `json:"application_id,omitempty"`
	JobID         string `json:"job_id,omitempty"`
	CandidateID   string `json:"candidate_id,omitempty"`
	CandidateName string `json:"candidate_name,omitempty"`
	JobTitle      string `json:"job_title,omitempty"`
	Status        string `json:"status,omitempty"`
}

// CompanyInfoSection is one named block of company information
// (mission, vision, benefits, about, work_environment, faqs, ...).
type CompanyInfoSection struct {
	SectionName string `json:"section_name,omitempty"`
	Content     string `json:"content,omitempty"`
}

// Document is a record returned by the document store. Metadata carries at
// least a "type" tag and, for job records, a "status" field.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Type returns the document's metadata type tag.
func (d *Document) Type() string {
	if d == nil || d.Metadata == nil {
		return ""
	}
	return d.Metadata["type"]
}

// IsActiveJob reports whether the document describes a job in active status.
func (d *Document) IsActiveJob() bool {
	if d.Type() != "job" {
		return false
	}
	if strings.EqualFold(d.Metadata["status"], JobStatusActive) {
		return true
	}
	return strings.Contains(strings.ToLower(d.Content), "status: active")
}

// FilterActiveJobs returns only the jobs in active status, capped at
// ActiveJobsLimit.
func FilterActiveJobs(jobs []*Job) []*Job {
	active := make([]*Job, 0, len(jobs))
	for _, job := range jobs {
		if !job.IsActive() {
			continue
		}
		active = append(active, job)
		if len(active) == ActiveJobsLimit {
			break
		}
	}
	return active
}
