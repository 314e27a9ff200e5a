package models

import (
	"reflect"
	"sort"
	"testing"
)

func sizedEntry(color Color, checked bool, upload *FormFile, reuseURL string, quantities map[int]int) *ColorInventory {
	return &ColorInventory{
		Color:      color,
		Checked:    checked,
		NewImage:   upload,
		ImageURL:   reuseURL,
		Quantities: quantities,
	}
}

func TestPlanVariantChanges_PurgesUncheckedColors(t *testing.T) {
	black := Color{ID: 1, Name: "black"}
	white := Color{ID: 2, Name: "white"}
	existing := []ShopItemVariant{
		{ID: 100, ShopItemId: 5, ColorId: 1, SizeId: 11, Quantity: 2, ImageUrl: "shop_items/5/colors/black/a.png"},
		{ID: 101, ShopItemId: 5, ColorId: 1, SizeId: 12, Quantity: 1, ImageUrl: "shop_items/5/colors/black/a.png"},
		{ID: 102, ShopItemId: 5, ColorId: 2, SizeId: 11, Quantity: 4, ImageUrl: "shop_items/5/colors/white/b.png"},
	}
	form := &InventoryFormData{HasSizes: true, Colors: map[int]*ColorInventory{
		1: sizedEntry(black, true, nil, "shop_items/5/colors/black/a.png", map[int]int{11: 9, 12: 1}),
		2: sizedEntry(white, false, nil, "", map[int]int{11: 4}),
	}}

	plan := planVariantChanges(existing, form, false)

	if !reflect.DeepEqual(plan.PurgeColorIds, []int{2}) {
		t.Fatalf("expected purge of white only, got %v", plan.PurgeColorIds)
	}
	if !reflect.DeepEqual(plan.RemoveImageURLs, []string{"shop_items/5/colors/white/b.png"}) {
		t.Fatalf("expected white image removal only, got %v", plan.RemoveImageURLs)
	}
	if len(plan.Colors) != 1 || plan.Colors[0].Color.ID != 1 {
		t.Fatalf("expected one planned color (black), got %+v", plan.Colors)
	}

	cp := plan.Colors[0]
	if cp.Upload != nil || cp.ReuseURL != "shop_items/5/colors/black/a.png" {
		t.Fatalf("reused locator must be kept as-is, got upload=%v reuse=%q", cp.Upload, cp.ReuseURL)
	}
	want := []variantUpsert{
		{SizeId: 11, Quantity: 9, ExistingId: 100},
		{SizeId: 12, Quantity: 1, ExistingId: 101},
	}
	if !reflect.DeepEqual(cp.Upserts, want) {
		t.Fatalf("unexpected upserts: %+v", cp.Upserts)
	}
}

func TestPlanVariantChanges_SharedLocatorRemovedOnce(t *testing.T) {
	existing := []ShopItemVariant{
		{ID: 1, ColorId: 1, SizeId: 11, ImageUrl: "shop_items/5/colors/black/a.png"},
		{ID: 2, ColorId: 1, SizeId: 12, ImageUrl: "shop_items/5/colors/black/a.png"},
		{ID: 3, ColorId: 1, SizeId: 13, ImageUrl: "shop_items/5/colors/black/a.png"},
	}
	form := &InventoryFormData{HasSizes: true, Colors: map[int]*ColorInventory{
		1: sizedEntry(Color{ID: 1, Name: "black"}, false, nil, "", nil),
	}}

	plan := planVariantChanges(existing, form, false)
	if len(plan.RemoveImageURLs) != 1 {
		t.Fatalf("rows sharing a locator must queue exactly one delete, got %v", plan.RemoveImageURLs)
	}
}

func TestPlanVariantChanges_NewUploadSupersedesStoredImage(t *testing.T) {
	existing := []ShopItemVariant{
		{ID: 1, ColorId: 1, SizeId: 11, ImageUrl: "shop_items/5/colors/black/old.png"},
	}
	upload := &FormFile{Filename: "new.png", Data: []byte("bytes")}
	form := &InventoryFormData{HasSizes: true, Colors: map[int]*ColorInventory{
		1: sizedEntry(Color{ID: 1, Name: "black"}, true, upload, "", map[int]int{11: 2}),
	}}

	plan := planVariantChanges(existing, form, false)
	if len(plan.PurgeColorIds) != 0 {
		t.Fatalf("checked color must not be purged, got %v", plan.PurgeColorIds)
	}
	if plan.Colors[0].Upload != upload {
		t.Fatalf("expected new upload in plan")
	}
	if !reflect.DeepEqual(plan.RemoveImageURLs, []string{"shop_items/5/colors/black/old.png"}) {
		t.Fatalf("replaced image must be queued for removal, got %v", plan.RemoveImageURLs)
	}
}

func TestPlanVariantChanges_NewColorInserts(t *testing.T) {
	form := &InventoryFormData{HasSizes: true, Colors: map[int]*ColorInventory{
		2: sizedEntry(Color{ID: 2, Name: "white"}, true, &FormFile{Filename: "w.png", Data: []byte("x")}, "", map[int]int{11: 1, 12: 0}),
	}}

	plan := planVariantChanges(nil, form, false)
	if len(plan.PurgeColorIds) != 0 || len(plan.RemoveImageURLs) != 0 {
		t.Fatalf("fresh item must not plan removals: %+v", plan)
	}
	for _, up := range plan.Colors[0].Upserts {
		if up.ExistingId != 0 {
			t.Fatalf("new color rows must insert, got %+v", up)
		}
	}
	if len(plan.Colors[0].Upserts) != 2 {
		t.Fatalf("expected one row per size, got %+v", plan.Colors[0].Upserts)
	}
}

func TestPlanVariantChanges_TypeChangedReplacesWholesale(t *testing.T) {
	existing := []ShopItemVariant{
		{ID: 1, ColorId: 1, SizeId: 11, ImageUrl: "shop_items/5/colors/black/a.png"},
		{ID: 2, ColorId: 2, SizeId: 10, ImageUrl: "shop_items/5/colors/white/b.png"},
	}
	form := &InventoryFormData{HasSizes: false, Colors: map[int]*ColorInventory{
		// black stays checked with a fresh upload; its carried-over locator
		// (if any) is irrelevant on a type change
		1: sizedEntry(Color{ID: 1, Name: "black"}, true, &FormFile{Filename: "n.png", Data: []byte("x")}, "", map[int]int{10: 3}),
		2: sizedEntry(Color{ID: 2, Name: "white"}, false, nil, "", nil),
	}}

	plan := planVariantChanges(existing, form, true)

	if !reflect.DeepEqual(plan.PurgeColorIds, []int{1, 2}) {
		t.Fatalf("type change must purge every existing color, got %v", plan.PurgeColorIds)
	}
	urls := append([]string(nil), plan.RemoveImageURLs...)
	sort.Strings(urls)
	want := []string{"shop_items/5/colors/black/a.png", "shop_items/5/colors/white/b.png"}
	if !reflect.DeepEqual(urls, want) {
		t.Fatalf("type change must remove every stored image, got %v", plan.RemoveImageURLs)
	}
	for _, up := range plan.Colors[0].Upserts {
		if up.ExistingId != 0 {
			t.Fatalf("type change must insert fresh rows, got %+v", up)
		}
	}
}

func TestPlanVariantChanges_Idempotent(t *testing.T) {
	existing := []ShopItemVariant{
		{ID: 1, ColorId: 1, SizeId: 11, Quantity: 2, ImageUrl: "shop_items/5/colors/black/a.png"},
	}
	form := &InventoryFormData{HasSizes: true, Colors: map[int]*ColorInventory{
		1: sizedEntry(Color{ID: 1, Name: "black"}, true, nil, "shop_items/5/colors/black/a.png", map[int]int{11: 2}),
	}}

	first := planVariantChanges(existing, form, false)
	second := planVariantChanges(existing, form, false)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plan must be deterministic:\n%+v\n%+v", first, second)
	}
	if len(first.PurgeColorIds) != 0 || len(first.RemoveImageURLs) != 0 {
		t.Fatalf("unchanged submission must plan no removals: %+v", first)
	}
	if up := first.Colors[0].Upserts[0]; up.ExistingId != 1 || up.Quantity != 2 {
		t.Fatalf("unchanged submission must update in place: %+v", up)
	}
}
