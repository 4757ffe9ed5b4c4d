package core_test

import (
	"context"
	"testing"

	"github.com/sikad-ph/otpkit/core"
	"github.com/sikad-ph/otpkit/docstore"
	memdocstore "github.com/sikad-ph/otpkit/docstore/memory"
)

func seedUser(t *testing.T, docs docstore.Store, key, phone string) {
	t.Helper()
	err := docs.Set(context.Background(), "users", key, map[string]any{
		"name":  "Test Rider",
		"phone": phone,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestMarkVerifiedMatchesEveryStoredFormat(t *testing.T) {
	// Historical records store the same number four different ways.
	for _, stored := range []string{
		"9933671339",
		"09933671339",
		"+639933671339",
		"639933671339",
	} {
		docs := memdocstore.New()
		seedUser(t, docs, "u1", stored)
		r := core.NewUserLinkResolver(docs)

		found, err := r.MarkVerified(context.Background(), "9933671339")
		if err != nil {
			t.Fatalf("stored %q: MarkVerified: %v", stored, err)
		}
		if !found {
			t.Fatalf("stored %q: no match", stored)
		}

		doc, err := docs.Get(context.Background(), "users", "u1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if doc.Fields["phoneVerified"] != true {
			t.Errorf("stored %q: phoneVerified = %v", stored, doc.Fields["phoneVerified"])
		}
		if doc.Fields["phone"] != "+639933671339" {
			t.Errorf("stored %q: phone = %v, want canonical form", stored, doc.Fields["phone"])
		}
		if doc.Fields["phoneVerifiedAt"] == nil {
			t.Errorf("stored %q: phoneVerifiedAt missing", stored)
		}
		if doc.Fields["name"] != "Test Rider" {
			t.Errorf("stored %q: unrelated field clobbered", stored)
		}
	}
}

func TestMarkVerifiedNoMatch(t *testing.T) {
	docs := memdocstore.New()
	seedUser(t, docs, "u1", "9170000000")
	r := core.NewUserLinkResolver(docs)

	found, err := r.MarkVerified(context.Background(), "9933671339")
	if err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if found {
		t.Fatal("matched a different number")
	}
}

func TestCheckMarksUserVerified(t *testing.T) {
	docs := memdocstore.New()
	seedUser(t, docs, "u1", "09933671339")

	svc, sender, _ := newTestService(t)
	svc.WithDocStore(docs).WithUserLink(core.NewUserLinkResolver(docs))
	ctx := context.Background()

	if err := svc.Start(ctx, "09933671339"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Check(ctx, "09933671339", sender.lastCode(t)); err != nil {
		t.Fatalf("Check: %v", err)
	}

	doc, err := docs.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Fields["phoneVerified"] != true {
		t.Error("user not marked verified after successful check")
	}
}

// failingDocs errors on every operation to exercise best-effort semantics.
type failingDocs struct {
	memdocstore.Store
	err error
}

func (f *failingDocs) Query(ctx context.Context, collection, field, equals string, limit int) ([]docstore.Doc, error) {
	return nil, f.err
}

func TestCheckSucceedsWhenUserLinkFails(t *testing.T) {
	fd := &failingDocs{err: context.DeadlineExceeded}
	svc, sender, _ := newTestService(t)
	svc.WithUserLink(core.NewUserLinkResolver(fd))
	ctx := context.Background()

	if err := svc.Start(ctx, "09933671339"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Verification is authoritative once the code matched.
	if err := svc.Check(ctx, "09933671339", sender.lastCode(t)); err != nil {
		t.Fatalf("Check = %v, want nil despite user link failure", err)
	}
}
