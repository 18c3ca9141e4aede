package domain

import (
	"reflect"
	"testing"
)

func testEntity() Entity {
	return NewEntity(
		EntityRef{Kind: "Component", Namespace: "default", Name: "website"},
		map[string]any{
			"kind": "Component",
			"metadata": map[string]any{
				"name": "website",
				"tags": []any{"go", "web"},
				"annotations": map[string]any{
					"team": "platform",
				},
			},
			"spec": map[string]any{
				"lifecycle": "production",
				"replicas":  float64(3),
				"public":    true,
			},
		},
	)
}

func TestSearchPairsFlattensDocument(t *testing.T) {
	pairs := testEntity().SearchPairs()

	want := map[string][]string{
		"kind":                      {"Component"},
		"metadata.name":             {"website"},
		"metadata.tags":             {"go", "web"},
		"metadata.annotations.team": {"platform"},
		"spec.lifecycle":            {"production"},
		"spec.replicas":             {"3"},
		"spec.public":               {"true"},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("SearchPairs() = %#v, want %#v", pairs, want)
	}
}

func TestValuesLooksUpCaseInsensitively(t *testing.T) {
	entity := testEntity()

	if got := entity.Values("Metadata.Tags"); !reflect.DeepEqual(got, []string{"go", "web"}) {
		t.Errorf("Values(Metadata.Tags) = %v", got)
	}
	if got := entity.Values("missing.field"); got != nil {
		t.Errorf("Values on absent field = %v, want nil", got)
	}
}

func TestValueReturnsFirstOrNil(t *testing.T) {
	entity := testEntity()

	if got := entity.Value("metadata.tags"); got == nil || *got != "go" {
		t.Errorf("Value(metadata.tags) = %v, want go", got)
	}
	if got := entity.Value("nope"); got != nil {
		t.Errorf("Value on absent field = %v, want nil", got)
	}
}

func TestProjectPrunesDocument(t *testing.T) {
	projected := testEntity().Project([]string{"metadata.name", "spec.lifecycle"})

	want := map[string]any{
		"metadata": map[string]any{"name": "website"},
		"spec":     map[string]any{"lifecycle": "production"},
	}
	if !reflect.DeepEqual(projected.Data, want) {
		t.Errorf("Project() data = %#v, want %#v", projected.Data, want)
	}
}

func TestProjectEmptySelectionKeepsDocument(t *testing.T) {
	entity := testEntity()
	projected := entity.Project(nil)
	if !reflect.DeepEqual(projected.Data, entity.Data) {
		t.Errorf("Project(nil) should keep the full document")
	}
}

func TestProjectIgnoresAbsentPaths(t *testing.T) {
	projected := testEntity().Project([]string{"does.not.exist"})
	if len(projected.Data) != 0 {
		t.Errorf("Project on absent path should yield an empty document, got %#v", projected.Data)
	}
}
