package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/genai"

	"github.com/talenttrack/hr-assistant/internal/hrms"
	"github.com/talenttrack/hr-assistant/internal/names"
)

func nameSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"first_name": {Type: genai.TypeString, Description: "Candidate's first name"},
			"last_name":  {Type: genai.TypeString, Description: "Candidate's last name"},
		},
		Required: []string{"first_name", "last_name"},
	}
}

type nameArgs struct {
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
}

func decodeArgs(args map[string]any, target any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

func activeJobs(store hrms.RelationalStore) *Capability {
	return &Capability{
		Name: "get_active_jobs",
		Description: "Fetch up to 10 currently active job listings. Use when the user asks about " +
			"available jobs, job openings, current positions, or specific job details such as salary " +
			"or requirements. Fetches ALL active jobs and accepts no filtering parameters. Returns " +
			"jobs with title, department, experience level, required skills, description, status, " +
			"location, and minimum salary. Returns an empty list when no jobs are found.",
		Execute: func(ctx context.Context, _ map[string]any) Result {
			jobs, err := store.ActiveJobs(ctx)
			if err != nil {
				return ErrorResult(Result{"jobs": []*hrms.Job{}}, err)
			}
			return OK(Result{"jobs": hrms.FilterActiveJobs(jobs)})
		},
	}
}

func companyInfo(store hrms.RelationalStore) *Capability {
	return &Capability{
		Name: "get_company_info",
		Description: "Fetch company information sections (mission, vision, benefits, about, " +
			"work_environment, faqs, application_process). Use when the user asks about the company " +
			"mission, vision, benefits, culture, or similar. Accepts a list of section names, " +
			"case-insensitive. Returns section_name and content pairs; empty list when nothing is found.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"section_names": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Section names to fetch, e.g. [\"mission\", \"vision\", \"benefits\"]",
				},
			},
			Required: []string{"section_names"},
		},
		Execute: func(ctx context.Context, args map[string]any) Result {
			var params struct {
				SectionNames []string `mapstructure:"section_names"`
			}
			if err := decodeArgs(args, &params); err != nil {
				return ErrorResult(Result{"company_info": []*hrms.CompanyInfoSection{}}, err)
			}
			if len(params.SectionNames) == 0 {
				return ErrorResult(Result{"company_info": []*hrms.CompanyInfoSection{}},
					fmt.Errorf("section_names is required"))
			}

			sections, err := store.CompanyInfo(ctx, params.SectionNames)
			if err != nil {
				return ErrorResult(Result{"company_info": []*hrms.CompanyInfoSection{}}, err)
			}
			return OK(Result{"company_info": sections})
		},
	}
}

func candidateProfile(store hrms.RelationalStore) *Capability {
	return &Capability{
		Name: "get_candidate",
		Description: "Fetch a candidate's profile by first and last name, case-insensitive. Use when " +
			"the user asks about a specific candidate or their profile. Returns candidate info when " +
			"found, otherwise an empty object.",
		Parameters: nameSchema(),
		Execute: func(ctx context.Context, args map[string]any) Result {
			var params nameArgs
			if err := decodeArgs(args, &params); err != nil {
				return ErrorResult(Result{"candidate": map[string]any{}}, err)
			}

			candidate, err := store.CandidateByName(ctx, params.FirstName, params.LastName)
			if err != nil {
				return ErrorResult(Result{"candidate": map[string]any{}}, err)
			}
			if candidate == nil {
				return OK(Result{"candidate": map[string]any{}})
			}
			return OK(Result{"candidate": candidate})
		},
	}
}

func matchCandidateToJobs(store hrms.RelationalStore) *Capability {
	return &Capability{
		Name: "match_candidate_to_jobs",
		Description: "Fetch a candidate's profile together with all active jobs so the best matches " +
			"can be suggested. Use when the user asks about job recommendations for a specific " +
			"candidate.",
		Parameters: nameSchema(),
		Execute: func(ctx context.Context, args map[string]any) Result {
			empty := func() Result {
				return Result{"candidate": map[string]any{}, "active_jobs": []*hrms.Job{}}
			}

			var params nameArgs
			if err := decodeArgs(args, &params); err != nil {
				return ErrorResult(empty(), err)
			}

			fullName := strings.TrimSpace(params.FirstName + " " + params.LastName)
			if err := names.Validate(fullName); err != nil {
				return ErrorResult(empty(), fmt.Errorf(
					"please provide the complete full name (first and last) to match with available jobs, got %q", fullName))
			}

			candidate, matched, err := names.Resolve(ctx, store, fullName)
			if err != nil {
				return ErrorResult(empty(), err)
			}
			if candidate == nil {
				return ErrorResult(empty(), fmt.Errorf(
					"candidate %q was not found; please provide the correct full name (first and last)", fullName))
			}

			jobs, err := store.ActiveJobs(ctx)
			if err != nil {
				return ErrorResult(empty(), err)
			}

			return OK(Result{
				"candidate":    candidate,
				"active_jobs":  hrms.FilterActiveJobs(jobs),
				"matched_name": strings.TrimSpace(matched.First + " " + matched.Last),
			})
		},
	}
}

func candidateStatus(store hrms.RelationalStore) *Capability {
	return &Capability{
		Name: "get_candidate_status",
		Description: "Fetch application status rows (candidate name, job title, status) for a " +
			"specific candidate. Use for questions about a candidate's application status or updates. " +
			"Requires the candidate's full name.",
		Parameters: nameSchema(),
		Execute: func(ctx context.Context, args map[string]any) Result {
			empty := func() Result { return Result{"candidate_status": []*hrms.Application{}} }

			var params nameArgs
			if err := decodeArgs(args, &params); err != nil {
				return ErrorResult(empty(), err)
			}

			fullName := strings.TrimSpace(params.FirstName + " " + params.LastName)
			if err := names.Validate(fullName); err != nil {
				return ErrorResult(empty(), fmt.Errorf(
					"please provide the complete full name (first and last) to look up application status, got %q", fullName))
			}

			candidate, matched, err := names.Resolve(ctx, store, fullName)
			if err != nil {
				return ErrorResult(empty(), err)
			}
			if candidate == nil {
				return ErrorResult(empty(), fmt.Errorf("candidate %q was not found", fullName))
			}

			applications, err := store.ApplicationsByCandidateName(ctx, matched.First, matched.Last)
			if err != nil {
				return ErrorResult(empty(), err)
			}
			return OK(Result{"candidate_status": applications})
		},
	}
}

func myProfile(store hrms.RelationalStore, callerID string) *Capability {
	return &Capability{
		Name: "get_my_profile",
		Description: "Fetch the authenticated candidate's own profile. Returns candidate info when " +
			"found, otherwise an empty object.",
		Execute: func(ctx context.Context, _ map[string]any) Result {
			candidate, err := store.CandidateByUserID(ctx, callerID)
			if err != nil {
				return ErrorResult(Result{"candidate": map[string]any{}}, err)
			}
			if candidate == nil {
				return OK(Result{"candidate": map[string]any{}})
			}
			return OK(Result{"candidate": candidate})
		},
	}
}

func myApplicationsStatus(store hrms.RelationalStore, callerID string) *Capability {
	return &Capability{
		Name: "get_my_applications_status",
		Description: "Fetch application status rows for the authenticated candidate only. Use for " +
			"questions about the logged-in candidate's own applications.",
		Execute: func(ctx context.Context, _ map[string]any) Result {
			applications, err := store.ApplicationsByUserID(ctx, callerID)
			if err != nil {
				return ErrorResult(Result{"candidate_status": []*hrms.Application{}}, err)
			}
			return OK(Result{"candidate_status": applications})
		},
	}
}

func myJobRecommendations(store hrms.RelationalStore, callerID string) *Capability {
	return &Capability{
		Name: "get_my_job_recommendations",
		Description: "Fetch the authenticated candidate's profile together with all active jobs for " +
			"personalized job recommendations. Use when the user asks which jobs fit them.",
		Execute: func(ctx context.Context, _ map[string]any) Result {
			empty := func() Result {
				return Result{"candidate": map[string]any{}, "active_jobs": []*hrms.Job{}}
			}

			candidate, err := store.CandidateByUserID(ctx, callerID)
			if err != nil {
				return ErrorResult(empty(), err)
			}
			if candidate == nil {
				return ErrorResult(empty(), fmt.Errorf(
					"candidate profile not found; please complete your profile first"))
			}

			jobs, err := store.ActiveJobs(ctx)
			if err != nil {
				return ErrorResult(empty(), err)
			}

			return OK(Result{
				"candidate":   candidate,
				"active_jobs": hrms.FilterActiveJobs(jobs),
			})
		},
	}
}
