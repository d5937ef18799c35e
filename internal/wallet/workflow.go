package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	jmes "github.com/jmespath/go-jmespath"
	"go.uber.org/zap"

	"passlink/pkg/config"
)

// Workflow runs the fixed demonstration sequence: class upsert, object
// get-or-create, save link, issuer creation, permissions replace and a batch
// of object inserts. Each step prints the raw response body (or the save URL)
// to out; errors abort the sequence.
type Workflow struct {
	cfg         config.Config
	typ         ObjectType
	account     *ServiceAccount
	client      *Client
	batchClient *http.Client
	out         io.Writer
	log         *zap.SugaredLogger
	newUserID   func() string
}

type WorkflowOption func(*Workflow)

// WithOutput redirects step output away from stdout. Used by tests.
func WithOutput(w io.Writer) WorkflowOption {
	return func(wf *Workflow) { wf.out = w }
}

// WithUserIDSource overrides the random user-id generator for the batch step.
func WithUserIDSource(fn func() string) WorkflowOption {
	return func(wf *Workflow) { wf.newUserID = fn }
}

func NewWorkflow(cfg config.Config, typ ObjectType, sa *ServiceAccount, client *Client, batchClient *http.Client, log *zap.SugaredLogger, opts ...WorkflowOption) *Workflow {
	wf := &Workflow{
		cfg:         cfg,
		typ:         typ,
		account:     sa,
		client:      client,
		batchClient: batchClient,
		out:         os.Stdout,
		log:         log,
		newUserID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(wf)
	}
	return wf
}

func (w *Workflow) Run(ctx context.Context) error {
	classID := ClassID(w.cfg.IssuerID, w.cfg.ClassID)
	objectID := ObjectID(w.cfg.IssuerID, w.cfg.UserID, w.cfg.ClassID)
	vars := TemplateVars{
		"issuer_id":   w.cfg.IssuerID,
		"class_id":    classID,
		"object_id":   objectID,
		"user_id":     w.cfg.UserID,
		"issuer_name": w.cfg.IssuerName,
	}
	w.log.Infow("starting wallet sequence", "type", string(w.typ), "class_id", classID, "object_id", objectID)

	classPayload, err := ClassPayload(w.typ, w.cfg.ClassTemplate, vars)
	if err != nil {
		return err
	}
	body, err := w.client.CreateClass(ctx, classPayload)
	if err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	w.print("class insert response", body)

	objectPayload, err := ObjectPayload(w.typ, w.cfg.ObjectTemplate, vars)
	if err != nil {
		return err
	}
	body, created, err := w.client.GetOrCreateObject(ctx, objectID, objectPayload)
	if err != nil {
		return fmt.Errorf("get or create object: %w", err)
	}
	w.log.Infow("object resolved", "object_id", objectID, "created", created)
	w.print("object response", body)

	link, err := SaveLink(w.account, w.typ, objectID, w.cfg.SaveOrigins)
	if err != nil {
		return fmt.Errorf("save link: %w", err)
	}
	fmt.Fprintln(w.out, link)

	body, err = w.client.CreateIssuer(ctx, w.cfg.IssuerName, w.cfg.IssuerEmail)
	if err != nil {
		return fmt.Errorf("create issuer: %w", err)
	}
	w.print("issuer insert response", body)

	perms := []Permission{{
		EmailAddress: w.cfg.PermissionEmail,
		Role:         Role(strings.ToUpper(w.cfg.PermissionRole)),
	}}
	body, err = w.client.UpdatePermissions(ctx, w.cfg.IssuerID, perms)
	if err != nil {
		return fmt.Errorf("update permissions: %w", err)
	}
	w.print("permissions update response", body)

	return w.runBatch(ctx, vars)
}

func (w *Workflow) runBatch(ctx context.Context, vars TemplateVars) error {
	opts := []BatchOption{}
	if w.batchClient != nil {
		opts = append(opts, WithBatchHTTPClient(w.batchClient))
	}
	batch := NewBatch(w.cfg.BatchURL, w.typ, opts...)
	for i := 0; i < w.cfg.BatchCount; i++ {
		userID := w.newUserID()
		itemVars := TemplateVars{}
		for k, v := range vars {
			itemVars[k] = v
		}
		itemVars["user_id"] = userID
		itemVars["object_id"] = ObjectID(w.cfg.IssuerID, userID, w.cfg.ClassID)
		payload, err := ObjectPayload(w.typ, w.cfg.ObjectTemplate, itemVars)
		if err != nil {
			return err
		}
		if err := batch.AddObject(payload); err != nil {
			return err
		}
	}
	results, err := batch.Execute(ctx)
	if err != nil {
		return fmt.Errorf("batch insert: %w", err)
	}
	w.log.Infow("batch executed", "items", batch.Len(), "responses", len(results))
	for _, res := range results {
		w.print("batch response", res.Body)
	}
	return nil
}

func (w *Workflow) print(step string, body []byte) {
	if id, ok := resourceID(body); ok {
		w.log.Infow(step, "id", id)
	}
	fmt.Fprintf(w.out, "%s\n", body)
}

// resourceID pulls the id out of a JSON response body, when there is one.
func resourceID(body []byte) (string, bool) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", false
	}
	v, err := jmes.Search("id", doc)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
