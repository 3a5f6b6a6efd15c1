package locations

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func seedTree(t *testing.T, repo Repository) (country, province, city *Location) {
	t.Helper()
	ctx := context.Background()

	country, err := repo.Create(ctx, &CreateRequest{Name: "Argentina", Level: LevelCountry})
	if err != nil {
		t.Fatalf("create country: %v", err)
	}
	province, err = repo.Create(ctx, &CreateRequest{Name: "Buenos Aires", Level: LevelProvince, ParentID: &country.ID})
	if err != nil {
		t.Fatalf("create province: %v", err)
	}
	city, err = repo.Create(ctx, &CreateRequest{Name: "CABA", Level: LevelCity, ParentID: &province.ID})
	if err != nil {
		t.Fatalf("create city: %v", err)
	}
	return country, province, city
}

func TestHierarchyRules(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	country, _, city := seedTree(t, repo)

	// A neighborhood must hang off a city, not a country.
	if _, err := repo.Create(ctx, &CreateRequest{Name: "Palermo", Level: LevelNeighborhood, ParentID: &country.ID}); err != ErrInvalidParent {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
	if _, err := repo.Create(ctx, &CreateRequest{Name: "Palermo", Level: LevelNeighborhood, ParentID: &city.ID}); err != nil {
		t.Fatalf("neighborhood under city should work: %v", err)
	}

	// Countries are roots.
	if _, err := repo.Create(ctx, &CreateRequest{Name: "Uruguay", Level: LevelCountry, ParentID: &city.ID}); err != ErrInvalidParent {
		t.Fatalf("expected ErrInvalidParent for country with parent, got %v", err)
	}
	// Non-roots need a parent.
	if _, err := repo.Create(ctx, &CreateRequest{Name: "Córdoba", Level: LevelProvince}); err != ErrInvalidParent {
		t.Fatalf("expected ErrInvalidParent for orphan province, got %v", err)
	}
}

func TestListChildrenSorted(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	_, _, city := seedTree(t, repo)

	for _, name := range []string{"Palermo", "Caballito", "Belgrano"} {
		if _, err := repo.Create(ctx, &CreateRequest{Name: name, Level: LevelNeighborhood, ParentID: &city.ID}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	out, err := repo.ListChildren(ctx, city.ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(out) != 3 || out[0].Name != "Belgrano" || out[2].Name != "Palermo" {
		t.Fatalf("expected sorted neighborhoods, got %+v", out)
	}
}

type countingRepo struct {
	Repository
	listChildrenCalls int
}

func (r *countingRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Location, error) {
	r.listChildrenCalls++
	return r.Repository.ListChildren(ctx, parentID)
}

func TestCachedRepository(t *testing.T) {
	inner := &countingRepo{Repository: NewInMemoryRepository()}
	repo := NewCachedRepository(inner)
	ctx := context.Background()

	country, err := repo.Create(ctx, &CreateRequest{Name: "Argentina", Level: LevelCountry})
	if err != nil {
		t.Fatalf("create country: %v", err)
	}
	if _, err := repo.Create(ctx, &CreateRequest{Name: "Buenos Aires", Level: LevelProvince, ParentID: &country.ID}); err != nil {
		t.Fatalf("create province: %v", err)
	}

	for i := 0; i < 3; i++ {
		out, err := repo.ListChildren(ctx, country.ID)
		if err != nil {
			t.Fatalf("list children: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("expected one province, got %d", len(out))
		}
	}
	if inner.listChildrenCalls != 1 {
		t.Fatalf("expected a single backing call, got %d", inner.listChildrenCalls)
	}

	// A write under the same parent invalidates the entry.
	if _, err := repo.Create(ctx, &CreateRequest{Name: "Córdoba", Level: LevelProvince, ParentID: &country.ID}); err != nil {
		t.Fatalf("create province: %v", err)
	}
	out, err := repo.ListChildren(ctx, country.ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(out) != 2 || inner.listChildrenCalls != 2 {
		t.Fatalf("expected fresh read after write, got %d provinces after %d calls", len(out), inner.listChildrenCalls)
	}
}
