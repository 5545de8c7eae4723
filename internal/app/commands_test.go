package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"propsite/internal/app"
	"propsite/internal/domain"
)

func TestPropertyService_Roles(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "villa_x")
	ctx := context.Background()
	viewer := &domain.Session{Email: "v@example.test", Role: domain.RoleViewer}
	editor := &domain.Session{Email: "e@example.test", Role: domain.RoleEditor}
	patch := map[string]json.RawMessage{"name": json.RawMessage(`"x"`)}

	if _, err := f.p.List(ctx, nil); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("anonymous list: %v", err)
	}
	if _, err := f.p.List(ctx, viewer); err != nil {
		t.Fatalf("viewer list: %v", err)
	}
	if _, err := f.p.Update(ctx, viewer, "villa_x", patch); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("viewer update: %v", err)
	}
	if _, err := f.p.Update(ctx, editor, "villa_x", patch); err != nil {
		t.Fatalf("editor update: %v", err)
	}
	if _, err := f.p.Publish(ctx, editor, "villa_x"); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("editor publish: %v", err)
	}
	if _, err := f.p.CreateShell(ctx, editor, app.CreateShellInput{ID: "new", Status: domain.StatusRental}); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("editor create: %v", err)
	}
	if err := f.p.PutTheme(ctx, viewer, domain.Theme{Name: "x"}); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("viewer theme: %v", err)
	}
	if err := f.p.Revert(ctx, editor, "villa_x"); err != nil {
		t.Fatalf("editor revert: %v", err)
	}
}

func TestPropertyService_ListAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "villa_x")
	if _, err := f.p.CreateShell(ctx, admin, app.CreateShellInput{ID: "cabin", Name: domain.Plain("Cabin"), Status: domain.StatusSale}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.p.Update(ctx, admin, "villa_x", map[string]json.RawMessage{"archived": json.RawMessage(`true`)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	out, err := f.p.List(ctx, admin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != "cabin" || out[1].ID != "villa_x" {
		t.Fatalf("got %+v", out)
	}
	if out[0].IsPublished || !out[0].HasDraft {
		t.Fatalf("cabin: %+v", out[0])
	}
	if !out[1].IsPublished || !out[1].HasDraft || out[1].Name != "Villa X" {
		t.Fatalf("villa_x: %+v", out[1])
	}

	h, err := f.p.History(ctx, admin, "villa_x")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Drafts) != 1 || len(h.Archive) != 2 {
		t.Fatalf("history: %+v", h)
	}
	if _, err := f.p.History(ctx, admin, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing history: %v", err)
	}
}

func TestPropertyService_Preview(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "villa_x")
	ctx := context.Background()
	if _, err := f.p.Update(ctx, admin, "villa_x", map[string]json.RawMessage{"summary": json.RawMessage(`{"fr":"Brouillon"}`)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	v, err := f.p.Preview(ctx, admin, "villa_x", "fr")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if v.Summary != "Brouillon" || v.IsPublished {
		t.Fatalf("got %+v", v)
	}
}

func TestPublishAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := f.p.CreateShell(ctx, admin, app.CreateShellInput{ID: id, Name: domain.Plain(id), Status: domain.StatusRental}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if _, err := f.p.Publish(ctx, admin, "b"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	rep, err := f.p.PublishAll(ctx, admin)
	if err != nil {
		t.Fatalf("publish all: %v", err)
	}
	if len(rep.Failed) != 0 {
		t.Fatalf("failures: %+v", rep.Failed)
	}
	if len(rep.Published) != 2 || rep.Published[0] != "a" || rep.Published[1] != "c" {
		t.Fatalf("published: %+v", rep.Published)
	}
	for _, id := range []string{"a", "b", "c"} {
		if _, err := f.q.GetProperty(ctx, id, "en"); err != nil {
			t.Fatalf("%s not public: %v", id, err)
		}
	}

	editor := &domain.Session{Role: domain.RoleEditor}
	if _, err := f.p.PublishAll(ctx, editor); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("editor publish all: %v", err)
	}
}
