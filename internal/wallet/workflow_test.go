package wallet

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"passlink/pkg/config"
	"passlink/pkg/logger"
)

func TestWorkflowRunsFullSequence(t *testing.T) {
	api, calls := newFakeAPI(t, http.StatusNotFound, `{"error":"not found"}`)
	batch := &fakeBatchEndpoint{}
	batchSrv := httptest.NewServer(batch.handler(t))
	defer batchSrv.Close()

	sa, _ := testServiceAccount(t)
	cfg := config.Config{
		Env:             "dev",
		IssuerID:        "3388000000022141111",
		ClassID:         "test-class-id",
		UserID:          "user@example.com",
		ObjectType:      "generic",
		APIBase:         api.URL,
		BatchURL:        batchSrv.URL,
		IssuerName:      "Example issuer",
		IssuerEmail:     "issuer@example.com",
		PermissionEmail: "reader@example.com",
		PermissionRole:  "reader",
		BatchCount:      2,
		HTTPTimeout:     5 * time.Second,
	}

	var out bytes.Buffer
	var userSeq int
	client := NewClient(cfg.APIBase, Generic)
	wf := NewWorkflow(cfg, Generic, sa, client, nil, logger.Nop(),
		WithOutput(&out),
		WithUserIDSource(func() string {
			userSeq++
			return fmt.Sprintf("batch-user-%d@example.com", userSeq)
		}),
	)

	if err := wf.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if calls.classPosts != 1 {
		t.Fatalf("classPosts = %d", calls.classPosts)
	}
	if calls.gets != 1 || calls.objectPosts != 1 {
		t.Fatalf("expected one GET and one fallback POST, got %d/%d", calls.gets, calls.objectPosts)
	}
	if calls.lastObjectID != "3388000000022141111.user_example_com-test-class-id" {
		t.Fatalf("object GET id = %q", calls.lastObjectID)
	}
	if calls.issuerPosts != 1 || calls.permissionPuts != 1 {
		t.Fatalf("issuerPosts=%d permissionPuts=%d", calls.issuerPosts, calls.permissionPuts)
	}

	if batch.requests != 1 {
		t.Fatalf("batch endpoint hit %d times", batch.requests)
	}
	if len(batch.ids) != cfg.BatchCount {
		t.Fatalf("batch items = %d, want %d", len(batch.ids), cfg.BatchCount)
	}
	seen := map[string]bool{}
	for _, id := range batch.ids {
		if !strings.HasPrefix(id, cfg.IssuerID+".batch-user-") {
			t.Fatalf("unexpected batch object id %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate batch object id %q", id)
		}
		seen[id] = true
	}

	stdout := out.String()
	if !strings.Contains(stdout, `{"id":"class-created"}`) {
		t.Fatalf("class response not surfaced:\n%s", stdout)
	}
	if !strings.Contains(stdout, `{"id":"object-created"}`) {
		t.Fatalf("object response not surfaced:\n%s", stdout)
	}
	if !strings.Contains(stdout, SaveLinkBase) {
		t.Fatalf("save link not printed:\n%s", stdout)
	}
	if !strings.Contains(stdout, `{"issuerId":"9"}`) {
		t.Fatalf("issuer response not surfaced:\n%s", stdout)
	}
}

func TestWorkflowStopsWhenObjectLookupFails(t *testing.T) {
	api, calls := newFakeAPI(t, http.StatusInternalServerError, `{"error":"boom"}`)
	sa, _ := testServiceAccount(t)
	cfg := config.Config{
		IssuerID:       "1",
		ClassID:        "c",
		UserID:         "u",
		APIBase:        api.URL,
		BatchURL:       "http://unused.invalid",
		PermissionRole: "reader",
		BatchCount:     1,
	}
	client := NewClient(cfg.APIBase, Generic)
	wf := NewWorkflow(cfg, Generic, sa, client, nil, logger.Nop(), WithOutput(&bytes.Buffer{}))

	if err := wf.Run(context.Background()); err == nil {
		t.Fatal("expected the 500 lookup error to propagate")
	}
	if calls.objectPosts != 0 {
		t.Fatal("fallback create must not run after a non-404 lookup failure")
	}
	if calls.issuerPosts != 0 {
		t.Fatal("later steps must not run after a failure")
	}
}
