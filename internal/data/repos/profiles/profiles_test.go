package profiles

import (
	"context"
	"testing"

	"github.com/yungbote/execudex-backend/internal/data/repos/testutil"
	types "github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
)

func TestPoliticianRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	repo := NewPoliticianRepo(db, testutil.Logger(t))

	if row, err := repo.GetIndex(dbc, 1); err != nil || row != nil {
		t.Fatalf("GetIndex missing: row=%v err=%v", row, err)
	}

	testutil.SeedPolitician(t, ctx, db, &types.PoliticianIndex{ID: 1, Name: "Jane Doe", SubName: "Senator"})
	if ok, err := repo.ProfileExists(dbc, 1); err != nil || ok {
		t.Fatalf("ProfileExists before seed: ok=%v err=%v", ok, err)
	}
	testutil.SeedPoliticianProfile(t, ctx, db, &types.PoliticianProfile{IndexID: 1, Synopsis: testutil.PtrString("bio")})
	if ok, err := repo.ProfileExists(dbc, 1); err != nil || !ok {
		t.Fatalf("ProfileExists after seed: ok=%v err=%v", ok, err)
	}

	if err := repo.SetIndexed(dbc, 1, true); err != nil {
		t.Fatalf("SetIndexed: %v", err)
	}
	if err := repo.SetWeak(dbc, 1); err != nil {
		t.Fatalf("SetWeak: %v", err)
	}
	row, err := repo.GetIndex(dbc, 1)
	if err != nil || row == nil {
		t.Fatalf("GetIndex: row=%v err=%v", row, err)
	}
	if !types.IsTrue(row.Indexed) || !types.IsTrue(row.Weak) {
		t.Fatalf("flags: indexed=%v weak=%v", row.Indexed, row.Weak)
	}

	prof, err := repo.GetProfile(dbc, 1)
	if err != nil || prof == nil || prof.Synopsis == nil || *prof.Synopsis != "bio" {
		t.Fatalf("GetProfile: prof=%v err=%v", prof, err)
	}
	if prof.HasMetrics() {
		t.Fatalf("HasMetrics: want=false got=true")
	}
}

func TestLegislationRepoInTx(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewLegislationRepo(db, testutil.Logger(t))

	testutil.SeedLegislation(t, ctx, tx, &types.LegislationIndex{ID: 7, Name: testutil.PtrString("HR 7")})
	if err := repo.SetIndexed(dbc, 7, true); err != nil {
		t.Fatalf("SetIndexed: %v", err)
	}
	row, err := repo.GetIndex(dbc, 7)
	if err != nil || row == nil || !types.IsTrue(row.Indexed) || row.BillLvl != nil {
		t.Fatalf("GetIndex: row=%+v err=%v", row, err)
	}
	if prof, err := repo.GetProfile(dbc, 7); err != nil || prof != nil {
		t.Fatalf("GetProfile missing: prof=%v err=%v", prof, err)
	}
}

func TestCardRepoCountsOnlyActiveCardsOfKind(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	repo := NewCardRepo(db, testutil.Logger(t))

	testutil.SeedCards(t, ctx, db, 5, true, true, 3)
	testutil.SeedCards(t, ctx, db, 5, true, false, 2)
	testutil.SeedCards(t, ctx, db, 5, false, true, 4)

	n, err := repo.CountActive(dbc, 5, types.KindPolitician)
	if err != nil || n != 3 {
		t.Fatalf("CountActive politician: want=3 got=%d err=%v", n, err)
	}
	n, err = repo.CountActive(dbc, 5, types.KindLegislation)
	if err != nil || n != 4 {
		t.Fatalf("CountActive legislation: want=4 got=%d err=%v", n, err)
	}
	cards, err := repo.ListActive(dbc, 5, types.KindPolitician, 2)
	if err != nil || len(cards) != 2 {
		t.Fatalf("ListActive: len=%d err=%v", len(cards), err)
	}
}
