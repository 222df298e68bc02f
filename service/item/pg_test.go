package item

import (
	"context"
	"errors"
	"testing"

	"github.com/webuild-community/honor/database/dbtest"
	"github.com/webuild-community/honor/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestCatalogFiltersAndSorts(t *testing.T) {
	svc := NewPGService(dbtest.New(t))
	ctx := context.Background()

	for _, it := range []model.Item{
		{Name: "Hoodie", Cost: 300, Stock: 2, IsActive: true},
		{Name: "Sticker", Cost: 10, Stock: model.UnlimitedStock, IsActive: true},
		{Name: "Retired", Cost: 1, Stock: 5, IsActive: false},
		{Name: "Mug", Cost: 50, Stock: 0, IsActive: true},
	} {
		if _, err := svc.Create(ctx, it); err != nil {
			t.Fatalf("Create(%s): %v", it.Name, err)
		}
	}

	items, err := svc.Catalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	want := []string{"Sticker", "Mug", "Hoodie"}
	if len(names) != len(want) {
		t.Fatalf("catalog = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("catalog = %v, want %v", names, want)
		}
	}
	if items[0].StockLabel() != "unlimited" || items[1].StockLabel() != "0" || items[2].StockLabel() != "2" {
		t.Errorf("unexpected stock labels: %q %q %q", items[0].StockLabel(), items[1].StockLabel(), items[2].StockLabel())
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 || all[0].Name != "Hoodie" || all[3].Name != "Mug" {
		t.Errorf("List() should return every item by id: %+v", all)
	}
}

func TestCatalogEmpty(t *testing.T) {
	svc := NewPGService(dbtest.New(t))
	items, err := svc.Catalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(items))
	}
}

func TestCreateValidates(t *testing.T) {
	svc := NewPGService(dbtest.New(t))
	ctx := context.Background()
	for _, it := range []model.Item{
		{Name: " ", Cost: 1, Stock: 1},
		{Name: "x", Cost: -1, Stock: 1},
		{Name: "x", Cost: 1, Stock: -2},
	} {
		if _, err := svc.Create(ctx, it); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Create(%+v) = %v, want ErrInvalidInput", it, err)
		}
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := NewPGService(dbtest.New(t))
	ctx := context.Background()
	created, err := svc.Create(ctx, model.Item{Name: "Mug", Cost: 50, Stock: 3, IsActive: true})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, created.ID, Changes{
		Cost:     intPtr(60),
		Stock:    intPtr(model.UnlimitedStock),
		IsActive: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Name != "Mug" || updated.Cost != 60 || !updated.IsUnlimited() || updated.IsActive {
		t.Errorf("unexpected item after update: %+v", updated)
	}

	if _, err := svc.Update(ctx, created.ID, Changes{Name: strPtr("")}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Update(ctx, 999, Changes{Cost: intPtr(1)}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := svc.Find(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteKeepsRedemptionHistory(t *testing.T) {
	db := dbtest.New(t)
	svc := NewPGService(db)
	ctx := context.Background()
	it, _ := svc.Create(ctx, model.Item{Name: "Mug", Cost: 5, Stock: 1, IsActive: true})
	if err := db.Create(&model.Redemption{Code: "r1", UserID: "u1", ItemID: it.ID, Cost: 5}).Error; err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, it.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	var count int64
	db.Model(&model.Redemption{}).Count(&count)
	if count != 1 {
		t.Errorf("redemptions = %d, want 1", count)
	}
}
