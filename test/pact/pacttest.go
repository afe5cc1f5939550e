//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "canteen-api"
	ConsumerName = "canteen-web"

	StateMenuBaseline  = "menu has a breakfast product"
	StateProductExists = "product with id 1 exists"
	StateProductAbsent = "no product with id 404"
	StateStudentExists = "student pact@campus.edu exists"
)

const (
	ExistingProductID int64 = 1
	MissingProductID  int64 = 404

	ProductName  = "Masala Dosa"
	ProductPrice = "60"
	ProductTag   = "breakfast"

	StudentEmail    = "pact@campus.edu"
	StudentPassword = "pact-pass"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductPayload is the product both sides agree on.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"id":             ExistingProductID,
		"name":           ProductName,
		"price":          ProductPrice,
		"stock_quantity": 5,
		"tags":           []string{ProductTag},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
