package capability

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"go.uber.org/zap"
)

func setNames(set *Set) []string {
	var names []string
	for _, decl := range set.Declarations() {
		names = append(names, decl.Name)
	}
	sort.Strings(names)
	return names
}

func TestRegistryResolveAdmin(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(populatedStore(), zap.NewNop())
	set := registry.Resolve(RoleAdmin, "")

	expect := []string{
		"get_active_jobs",
		"get_candidate",
		"get_candidate_status",
		"get_company_info",
		"match_candidate_to_jobs",
	}
	if got := setNames(set); !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

func TestRegistryResolveCandidate(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(populatedStore(), zap.NewNop())
	set := registry.Resolve(RoleCandidate, "u1")

	expect := []string{
		"get_active_jobs",
		"get_company_info",
		"get_my_applications_status",
		"get_my_job_recommendations",
		"get_my_profile",
	}
	if got := setNames(set); !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

func TestRegistryResolveUnknownRoleFailsClosed(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(populatedStore(), zap.NewNop())
	set := registry.Resolve(Role("superuser"), "u1")

	if set.Len() != 0 {
		t.Fatalf("expected empty set, got %v", setNames(set))
	}

	// Even invoking an admin capability by name must fail.
	invocation := set.Invoke(context.Background(), "get_candidate_status",
		map[string]any{"first_name": "Jane", "last_name": "Doe"})
	if invocation.Success {
		t.Fatal("expected failure for unknown role")
	}
}

func TestCandidateSetExcludesNameKeyedLookups(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(populatedStore(), zap.NewNop())
	set := registry.Resolve(RoleCandidate, "u1")

	invocation := set.Invoke(context.Background(), "get_candidate",
		map[string]any{"first_name": "Mary", "last_name": "Jane Watson"})
	if invocation.Success {
		t.Fatal("candidate role must not reach name-keyed lookups")
	}
}
