package politician

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/repository"
	"github.com/hitoshi/polilog/internal/security"
)

const (
	partyUUID      = "11111111-2222-4333-8444-555555555555"
	politicianUUID = "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"
)

// mockPoliticianRepo はPoliticianRepositoryのモック実装。
type mockPoliticianRepo struct {
	findByIDFn           func(ctx context.Context, id string) (*model.PoliticianWithParty, error)
	findByNameAndPartyFn func(ctx context.Context, firstName, lastName, partyID string) (*model.Politician, error)
	listFn               func(ctx context.Context, params repository.ListPoliticiansParams) ([]*model.PoliticianWithParty, int, error)
	createFn             func(ctx context.Context, politician *model.Politician) error
}

func (m *mockPoliticianRepo) FindByID(ctx context.Context, id string) (*model.PoliticianWithParty, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockPoliticianRepo) FindByNameAndParty(ctx context.Context, firstName, lastName, partyID string) (*model.Politician, error) {
	if m.findByNameAndPartyFn != nil {
		return m.findByNameAndPartyFn(ctx, firstName, lastName, partyID)
	}
	return nil, nil
}
func (m *mockPoliticianRepo) List(ctx context.Context, params repository.ListPoliticiansParams) ([]*model.PoliticianWithParty, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, params)
	}
	return nil, 0, nil
}
func (m *mockPoliticianRepo) Create(ctx context.Context, politician *model.Politician) error {
	if m.createFn != nil {
		return m.createFn(ctx, politician)
	}
	return nil
}

// mockPartyRepo はPartyRepositoryのモック実装。
type mockPartyRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Party, error)
}

func (m *mockPartyRepo) FindByID(ctx context.Context, id string) (*model.Party, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockPartyRepo) FindByName(ctx context.Context, name string) (*model.Party, error) {
	return nil, nil
}
func (m *mockPartyRepo) List(ctx context.Context) ([]*model.Party, error) { return nil, nil }
func (m *mockPartyRepo) Create(ctx context.Context, party *model.Party) error {
	return nil
}

// existingPartyRepo は常に政党が見つかるPartyRepositoryを返す。
func existingPartyRepo() *mockPartyRepo {
	return &mockPartyRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Party, error) {
			return &model.Party{ID: id, Name: "テスト党"}, nil
		},
	}
}

// TestCreate_Success は有効な入力で政治家が登録されることを検証する。
func TestCreate_Success(t *testing.T) {
	var created *model.Politician
	repo := &mockPoliticianRepo{
		createFn: func(ctx context.Context, politician *model.Politician) error {
			created = politician
			return nil
		},
	}
	svc := NewService(repo, existingPartyRepo(), security.NewTextSanitizer())

	politician, err := svc.Create(context.Background(), CreateParams{
		FirstName: "太郎",
		LastName:  "山田",
		PartyID:   partyUUID,
		Biography: "元県議会議員。",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created == nil {
		t.Fatal("politician was not persisted")
	}
	if politician.FirstName != "太郎" || politician.LastName != "山田" {
		t.Errorf("name = %s %s", politician.LastName, politician.FirstName)
	}
	if politician.PartyID != partyUUID {
		t.Errorf("PartyID = %q", politician.PartyID)
	}
}

// TestCreate_PartyNotFound は存在しない政党がNOT_FOUNDになることを検証する。
func TestCreate_PartyNotFound(t *testing.T) {
	svc := NewService(&mockPoliticianRepo{}, &mockPartyRepo{}, security.NewTextSanitizer())

	_, err := svc.Create(context.Background(), CreateParams{
		FirstName: "太郎",
		LastName:  "山田",
		PartyID:   partyUUID,
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

// TestCreate_DuplicateInParty は同一政党内の同姓同名がVALIDATION_ERRORになることを検証する。
func TestCreate_DuplicateInParty(t *testing.T) {
	repo := &mockPoliticianRepo{
		findByNameAndPartyFn: func(ctx context.Context, firstName, lastName, partyID string) (*model.Politician, error) {
			return &model.Politician{ID: politicianUUID}, nil
		},
	}
	svc := NewService(repo, existingPartyRepo(), security.NewTextSanitizer())

	_, err := svc.Create(context.Background(), CreateParams{
		FirstName: "太郎",
		LastName:  "山田",
		PartyID:   partyUUID,
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

// TestCreate_ValidationErrors は不正な入力がVALIDATION_ERRORになることを検証する。
func TestCreate_ValidationErrors(t *testing.T) {
	svc := NewService(&mockPoliticianRepo{}, existingPartyRepo(), security.NewTextSanitizer())

	tests := []struct {
		name        string
		params      CreateParams
		detailField string
	}{
		{"名が空", CreateParams{FirstName: "", LastName: "山田", PartyID: partyUUID}, "first_name"},
		{"姓が空", CreateParams{FirstName: "太郎", LastName: "", PartyID: partyUUID}, "last_name"},
		{"政党IDが不正", CreateParams{FirstName: "太郎", LastName: "山田", PartyID: "bad"}, "party_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.params)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Fatalf("err = %v, want VALIDATION_ERROR", err)
			}
			if _, ok := apiErr.Details[tt.detailField]; !ok {
				t.Errorf("details should contain %q, got %v", tt.detailField, apiErr.Details)
			}
		})
	}
}

// TestCreate_SanitizesBiography は経歴のHTMLタグが除去されることを検証する。
func TestCreate_SanitizesBiography(t *testing.T) {
	svc := NewService(&mockPoliticianRepo{}, existingPartyRepo(), security.NewTextSanitizer())

	politician, err := svc.Create(context.Background(), CreateParams{
		FirstName: "太郎",
		LastName:  "山田",
		PartyID:   partyUUID,
		Biography: `<img src=x onerror=alert(1)>元県議会議員。`,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if politician.Biography != "元県議会議員。" {
		t.Errorf("Biography = %q", politician.Biography)
	}
}

// TestList_NormalizesParams はページ・ソートの正規化を検証する。
func TestList_NormalizesParams(t *testing.T) {
	var gotParams repository.ListPoliticiansParams
	repo := &mockPoliticianRepo{
		listFn: func(ctx context.Context, params repository.ListPoliticiansParams) ([]*model.PoliticianWithParty, int, error) {
			gotParams = params
			return []*model.PoliticianWithParty{}, 0, nil
		},
	}
	svc := NewService(repo, existingPartyRepo(), security.NewTextSanitizer())

	result, err := svc.List(context.Background(), ListParams{
		SortBy: "password_hash", // 許可リスト外
		Order:  "sideways",
		Page:   0,
		Limit:  500,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if gotParams.Sort != "last_name" {
		t.Errorf("Sort = %q, want last_name", gotParams.Sort)
	}
	if gotParams.Order != "desc" {
		t.Errorf("Order = %q, want desc", gotParams.Order)
	}
	if gotParams.Offset != 0 {
		t.Errorf("Offset = %d, want 0", gotParams.Offset)
	}
	if gotParams.Limit != 100 {
		t.Errorf("Limit = %d, want 100 (clamped)", gotParams.Limit)
	}
	if result.Page != 1 || result.Limit != 100 {
		t.Errorf("result page/limit = %d/%d, want 1/100", result.Page, result.Limit)
	}
}

// TestList_InvalidPartyID は不正な政党IDフィルタがVALIDATION_ERRORになることを検証する。
func TestList_InvalidPartyID(t *testing.T) {
	svc := NewService(&mockPoliticianRepo{}, existingPartyRepo(), security.NewTextSanitizer())

	_, err := svc.List(context.Background(), ListParams{PartyID: "not-a-uuid"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

// TestGet_NotFound は存在しない政治家がNOT_FOUNDになることを検証する。
func TestGet_NotFound(t *testing.T) {
	svc := NewService(&mockPoliticianRepo{}, existingPartyRepo(), security.NewTextSanitizer())

	_, err := svc.Get(context.Background(), politicianUUID)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
