package capability

import (
	"github.com/talenttrack/hr-assistant/internal/hrms"
	"go.uber.org/zap"
)

// Registry is the fixed, role-scoped capability mapping built at startup.
type Registry struct {
	store  hrms.RelationalStore
	logger *zap.Logger
}

// NewRegistry builds the registry over the relational store.
func NewRegistry(store hrms.RelationalStore, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, logger: logger}
}

// Resolve returns the capability set visible to the given role. Candidate
// callers get self-scoped executors closed over their own identity, so no
// name argument can redirect a lookup to another candidate's records.
// Unknown roles resolve to an empty set.
func (r *Registry) Resolve(role Role, callerID string) *Set {
	switch role {
	case RoleAdmin:
		return newSet([]*Capability{
			activeJobs(r.store),
			companyInfo(r.store),
			candidateProfile(r.store),
			matchCandidateToJobs(r.store),
			candidateStatus(r.store),
		})
	case RoleCandidate:
		return newSet([]*Capability{
			activeJobs(r.store),
			companyInfo(r.store),
			myProfile(r.store, callerID),
			myApplicationsStatus(r.store, callerID),
			myJobRecommendations(r.store, callerID),
		})
	default:
		r.logger.Warn("unknown role requested capabilities", zap.String("role", string(role)))
		return newSet(nil)
	}
}
