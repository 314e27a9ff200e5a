package models_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/models"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/shopspring/decimal"
)

// End-to-end reconciliation pass against a real MySQL: create with one
// color, add a second, uncheck the first, swap the item type, delete.
func TestShopItemReconcileLifecycle(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers. No redis: the cache and the
	// edit lease must both degrade gracefully.
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "sxnics_test")
	t.Setenv("REDIS_ADDRESS", "")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	db := config.GetDB()
	if db == nil {
		t.Fatal("database not initialized")
	}

	// Seed the catalog.
	black := models.Color{Name: "black", HashColor: "#000000"}
	white := models.Color{Name: "white", HashColor: "#ffffff"}
	for _, c := range []*models.Color{&black, &white} {
		if err := db.WithContext(ctx).Create(c).Error; err != nil {
			t.Fatalf("seed color: %v", err)
		}
	}
	defaultSize := models.Size{Name: models.SizeNameDefault}
	sizeS := models.Size{Name: "S"}
	sizeM := models.Size{Name: "M"}
	for _, s := range []*models.Size{&defaultSize, &sizeS, &sizeM} {
		if err := db.WithContext(ctx).Create(s).Error; err != nil {
			t.Fatalf("seed size: %v", err)
		}
	}
	shirt := models.ShopItemType{Type: "SHIRT", HasSizes: utils.NewTrue()}
	capType := models.ShopItemType{Type: "CAP", HasSizes: utils.NewFalse()}
	for _, it := range []*models.ShopItemType{&shirt, &capType} {
		if err := db.WithContext(ctx).Create(it).Error; err != nil {
			t.Fatalf("seed item type: %v", err)
		}
	}
	colors := []*models.Color{&black, &white}
	sizes := []*models.Size{&defaultSize, &sizeS, &sizeM}

	storage := &recordingStorage{objects: make(map[string][]byte)}

	// 1) Create: black checked, sized quantities.
	form := parseForm(t, colors, sizes, true, false,
		map[string]string{
			"checked_black":    "on",
			"quantity_black_S": "2",
			"quantity_black_M": "1",
		},
		map[string][]byte{"image_black": []byte("black-v1")},
	)
	input := &models.NewShopItem{
		Name:        "Logo Tee",
		Description: "Heavy cotton",
		Price:       decimal.NewFromInt(30),
		ItemTypeId:  shirt.ID,
	}
	created, err := models.CreateShopItem(ctx, storage, input, form)
	if err != nil {
		t.Fatalf("CreateShopItem: %v", err)
	}
	if len(created.Variants) != 2 {
		t.Fatalf("expected one row per real size, got %d", len(created.Variants))
	}
	blackURL := created.Variants[0].ImageUrl
	for _, v := range created.Variants {
		if v.ImageUrl != blackURL {
			t.Fatalf("size rows of one color must share the locator: %q vs %q", v.ImageUrl, blackURL)
		}
	}
	if storage.uploads() != 1 {
		t.Fatalf("expected a single upload for black, got %d", storage.uploads())
	}
	itemId := created.Item.ID

	// 2) Edit: add white with a new upload, keep black via carried-over locator.
	form = parseForm(t, colors, sizes, true, true,
		map[string]string{
			"checked_black":    "on",
			"image_black":      blackURL,
			"quantity_black_S": "5",
			"quantity_black_M": "1",
			"checked_white":    "on",
			"quantity_white_S": "3",
			"quantity_white_M": "0",
		},
		map[string][]byte{"image_white": []byte("white-v1")},
	)
	edited, err := models.EditShopItem(ctx, storage, itemId, input, form, false)
	if err != nil {
		t.Fatalf("EditShopItem (add white): %v", err)
	}
	if len(edited.Variants) != 4 {
		t.Fatalf("expected 4 rows after adding white, got %d", len(edited.Variants))
	}
	if len(edited.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", edited.Warnings)
	}
	for _, v := range edited.Variants {
		if v.ColorId == black.ID && v.ImageUrl != blackURL {
			t.Fatalf("reused locator must survive the edit untouched, got %q", v.ImageUrl)
		}
	}
	if len(storage.removedKeys()) != 0 {
		t.Fatalf("reuse must never delete-and-reupload, removed: %v", storage.removedKeys())
	}

	// 3) Edit: uncheck black; its rows and image go away.
	form = parseForm(t, colors, sizes, true, true,
		map[string]string{
			"checked_white":    "on",
			"image_white":      variantURL(t, edited.Variants, white.ID),
			"quantity_white_S": "3",
			"quantity_white_M": "0",
		},
		nil,
	)
	form.ApplyUncheckedColorIds([]int{black.ID})
	edited, err = models.EditShopItem(ctx, storage, itemId, input, form, false)
	if err != nil {
		t.Fatalf("EditShopItem (drop black): %v", err)
	}
	if len(edited.Variants) != 2 {
		t.Fatalf("expected white rows only, got %d", len(edited.Variants))
	}
	if !containsKey(storage.removedKeys(), utils.ExtractObjectKeyFromURL(blackURL)) {
		t.Fatalf("black image must be deleted after purge, removed: %v", storage.removedKeys())
	}

	// 4) Type change to a sizeless type replaces the item wholesale.
	form = parseForm(t, colors, sizes, false, true,
		map[string]string{
			"checked_white":  "on",
			"quantity_white": "8",
		},
		map[string][]byte{"image_white": []byte("white-v2")},
	)
	capInput := &models.NewShopItem{
		Name:        "Logo Cap",
		Description: "One size",
		Price:       decimal.NewFromInt(20),
		ItemTypeId:  capType.ID,
	}
	replaced, err := models.EditShopItem(ctx, storage, itemId, capInput, form, true)
	if err != nil {
		t.Fatalf("EditShopItem (type change): %v", err)
	}
	if replaced.Item.ID == itemId {
		t.Fatalf("type change must produce a replacement item")
	}
	if _, err := models.GetShopItem(ctx, itemId); err == nil {
		t.Fatalf("old item must be gone after type change")
	}
	if len(replaced.Variants) != 1 || replaced.Variants[0].SizeId != defaultSize.ID {
		t.Fatalf("sizeless item expected a single sentinel-size row, got %+v", replaced.Variants)
	}

	// 5) Delete removes rows and images.
	deleted, err := models.DeleteShopItem(ctx, storage, replaced.Item.ID)
	if err != nil {
		t.Fatalf("DeleteShopItem: %v", err)
	}
	if len(deleted.Warnings) != 0 {
		t.Fatalf("unexpected delete warnings: %v", deleted.Warnings)
	}
	rows, err := models.GetShopItemVariants(ctx, replaced.Item.ID)
	if err != nil {
		t.Fatalf("GetShopItemVariants: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("variants must be gone after delete, got %d", len(rows))
	}
}

func parseForm(t *testing.T, colors []*models.Color, sizes []*models.Size, hasSizes, editMode bool, fields map[string]string, files map[string][]byte) *models.InventoryFormData {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%q): %v", k, err)
		}
	}
	for field, data := range files {
		part, err := w.CreateFormFile(field, field+".png")
		if err != nil {
			t.Fatalf("CreateFormFile(%q): %v", field, err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part %q: %v", field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	mf, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	t.Cleanup(func() { _ = mf.RemoveAll() })

	form, err := models.ParseInventoryForm(mf, colors, sizes, hasSizes, editMode)
	if err != nil {
		t.Fatalf("ParseInventoryForm: %v", err)
	}
	return form
}

func variantURL(t *testing.T, variants []models.ShopItemVariant, colorId int) string {
	t.Helper()
	for _, v := range variants {
		if v.ColorId == colorId {
			return v.ImageUrl
		}
	}
	t.Fatalf("no variant for color %d", colorId)
	return ""
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// recordingStorage stands in for GCS; object keys double as public URLs.
type recordingStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
}

func (s *recordingStorage) Upload(_ context.Context, objectKey string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = data
	return objectKey, nil
}

func (s *recordingStorage) Remove(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey)
	s.removed = append(s.removed, objectKey)
	return nil
}

func (s *recordingStorage) Exists(_ context.Context, objectKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectKey]
	return ok, nil
}

func (s *recordingStorage) uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *recordingStorage) removedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("sxnics-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=sxnics_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
