package gcp

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type fakeLister struct {
	prefix string
	names  []string
	err    error
}

func (f *fakeLister) List(_ context.Context, prefix string, _ int) ([]string, error) {
	f.prefix = prefix
	return f.names, f.err
}

func TestHasSynopsisArtifact(t *testing.T) {
	cases := []struct {
		name  string
		names []string
		want  bool
	}{
		{"empty folder", nil, false},
		{"other files", []string{"legi/12/cards.json", "legi/12/impact.md"}, false},
		{"synopsis file", []string{"legi/12/cards.json", "legi/12/Bill_Synopsis.pdf"}, true},
		{"synopsis only in folder name", []string{"legi/12/synopsis/part.txt"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lister := &fakeLister{names: tc.names}
			store := &artifactStore{log: logger.Nop(), lister: lister}
			got, err := store.HasSynopsisArtifact(context.Background(), 12)
			if err != nil {
				t.Fatalf("HasSynopsisArtifact: %v", err)
			}
			if got != tc.want {
				t.Fatalf("HasSynopsisArtifact: want=%v got=%v", tc.want, got)
			}
			if lister.prefix != "legi/12/" {
				t.Fatalf("prefix: want=%q got=%q", "legi/12/", lister.prefix)
			}
		})
	}
}

func TestHasSynopsisArtifactPropagatesListError(t *testing.T) {
	store := &artifactStore{log: logger.Nop(), lister: &fakeLister{err: errors.New("denied")}}
	if _, err := store.HasSynopsisArtifact(context.Background(), 1); err == nil {
		t.Fatalf("HasSynopsisArtifact: want error")
	}
}

func TestDisabledArtifactStore(t *testing.T) {
	store, err := NewArtifactStore(logger.Nop(), ObjectStorageConfig{Mode: ObjectStorageModeDisabled})
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	ok, err := store.HasSynopsisArtifact(context.Background(), 5)
	if err != nil || ok {
		t.Fatalf("disabled store: ok=%v err=%v", ok, err)
	}
}
