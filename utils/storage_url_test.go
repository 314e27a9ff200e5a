package utils

import "testing"

func TestExtractObjectKeyFromURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"raw key", "shop_items/3/colors/black/a.png", "shop_items/3/colors/black/a.png"},
		{"raw key traversal", "shop_items/../secrets/a.png", ""},
		{"gs scheme", "gs://sxnics-media/shop_items/3/colors/black/a.png", "shop_items/3/colors/black/a.png"},
		{"gcs public", "https://storage.googleapis.com/sxnics-media/shop_items/3/colors/black/a.png", "shop_items/3/colors/black/a.png"},
		{"gcs console", "https://storage.cloud.google.com/sxnics-media/episodes/cover.jpg", "episodes/cover.jpg"},
		{"bucket subdomain", "https://sxnics-media.storage.googleapis.com/events/cover.jpg", "events/cover.jpg"},
		{"supabase public", "https://proj.supabase.co/storage/v1/object/public/shop/shop_items/4/colors/white/b.png", "shop_items/4/colors/white/b.png"},
		{"supabase missing key", "https://proj.supabase.co/storage/v1/object/public/shop", ""},
		{"foreign url", "https://example.com/cat.png", ""},
		{"empty", "", ""},
		{"plain word", "hello", ""},
	}
	for _, tc := range cases {
		if got := ExtractObjectKeyFromURL(tc.in); got != tc.want {
			t.Fatalf("%s: ExtractObjectKeyFromURL(%q) expected %q, got %q", tc.name, tc.in, tc.want, got)
		}
	}
}

func TestExtractObjectKeyFromURL_EnvPrefixes(t *testing.T) {
	t.Setenv("GCS_URL", "cdn.sxnics.com")
	t.Setenv("GCS_BUCKET", "sxnics-media")
	t.Setenv("STORAGE_ACCESS_BASE_URL", "https://media.sxnics.com")

	if got := ExtractObjectKeyFromURL("https://cdn.sxnics.com/sxnics-media/shop_items/1/colors/red/x.png"); got != "shop_items/1/colors/red/x.png" {
		t.Fatalf("env bucket prefix not stripped, got %q", got)
	}
	if got := ExtractObjectKeyFromURL("https://media.sxnics.com/releases/lp.jpg"); got != "releases/lp.jpg" {
		t.Fatalf("access base prefix not stripped, got %q", got)
	}
}

func TestBuildObjectAccessURL(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	t.Setenv("GCS_URL", "")
	t.Setenv("GCS_BUCKET", "")
	if got := BuildObjectAccessURL("a/b.png"); got != "a/b.png" {
		t.Fatalf("with no envs the key passes through, got %q", got)
	}

	t.Setenv("GCS_URL", "storage.googleapis.com")
	t.Setenv("GCS_BUCKET", "sxnics-media")
	if got := BuildObjectAccessURL("a/b.png"); got != "https://storage.googleapis.com/sxnics-media/a/b.png" {
		t.Fatalf("unexpected gcs url %q", got)
	}

	t.Setenv("STORAGE_ACCESS_BASE_URL", "https://media.sxnics.com/")
	if got := BuildObjectAccessURL("a/b.png"); got != "https://media.sxnics.com/a/b.png" {
		t.Fatalf("base url must win and not double the slash, got %q", got)
	}
}

func TestIsStorageURL(t *testing.T) {
	if !IsStorageURL("gs://sxnics-media/shop_items/1/colors/red/x.png") {
		t.Fatalf("gs url must be recognized")
	}
	if IsStorageURL("just some text") {
		t.Fatalf("arbitrary text must not be recognized")
	}
}
