package party

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/security"
)

// mockPartyRepo はPartyRepositoryのモック実装。
type mockPartyRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.Party, error)
	findByNameFn func(ctx context.Context, name string) (*model.Party, error)
	listFn       func(ctx context.Context) ([]*model.Party, error)
	createFn     func(ctx context.Context, party *model.Party) error
}

func (m *mockPartyRepo) FindByID(ctx context.Context, id string) (*model.Party, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockPartyRepo) FindByName(ctx context.Context, name string) (*model.Party, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name)
	}
	return nil, nil
}
func (m *mockPartyRepo) List(ctx context.Context) ([]*model.Party, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockPartyRepo) Create(ctx context.Context, party *model.Party) error {
	if m.createFn != nil {
		return m.createFn(ctx, party)
	}
	return nil
}

const validUUID = "01234567-89ab-4def-8123-456789abcdef"

// TestCreate_Success は有効な入力で政党が作成されることを検証する。
func TestCreate_Success(t *testing.T) {
	var created *model.Party
	repo := &mockPartyRepo{
		createFn: func(ctx context.Context, party *model.Party) error {
			created = party
			return nil
		},
	}
	svc := NewService(repo, security.NewTextSanitizer())

	party, err := svc.Create(context.Background(), CreateParams{
		Name:         "立憲未来党",
		Abbreviation: "未来",
		Description:  "テスト用の政党",
		ColorHex:     "#1A2B3C",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created == nil {
		t.Fatal("party was not persisted")
	}
	if party.Name != "立憲未来党" {
		t.Errorf("Name = %q", party.Name)
	}
	if party.ColorHex != "#1A2B3C" {
		t.Errorf("ColorHex = %q", party.ColorHex)
	}
	if party.ID == "" {
		t.Error("ID should be generated")
	}
}

// TestCreate_SanitizesName は政党名のHTMLタグが除去されることを検証する。
func TestCreate_SanitizesName(t *testing.T) {
	repo := &mockPartyRepo{}
	svc := NewService(repo, security.NewTextSanitizer())

	party, err := svc.Create(context.Background(), CreateParams{
		Name: "<script>alert(1)</script>新党",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if party.Name != "新党" {
		t.Errorf("Name = %q, want 新党", party.Name)
	}
}

// TestCreate_ValidationErrors は不正な入力がVALIDATION_ERRORになることを検証する。
func TestCreate_ValidationErrors(t *testing.T) {
	svc := NewService(&mockPartyRepo{}, security.NewTextSanitizer())

	tests := []struct {
		name        string
		params      CreateParams
		detailField string
	}{
		{"名前が空", CreateParams{Name: ""}, "name"},
		{"名前が空白のみ", CreateParams{Name: "   "}, "name"},
		{"色が不正", CreateParams{Name: "新党", ColorHex: "red"}, "color_hex"},
		{"色が短い", CreateParams{Name: "新党", ColorHex: "#FFF"}, "color_hex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.params)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want APIError", err)
			}
			if apiErr.Code != model.ErrCodeValidation {
				t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
			}
			if _, ok := apiErr.Details[tt.detailField]; !ok {
				t.Errorf("details should contain %q, got %v", tt.detailField, apiErr.Details)
			}
		})
	}
}

// TestCreate_DuplicateName は既存名がVALIDATION_ERRORになることを検証する。
func TestCreate_DuplicateName(t *testing.T) {
	repo := &mockPartyRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Party, error) {
			return &model.Party{ID: validUUID, Name: name}, nil
		},
	}
	svc := NewService(repo, security.NewTextSanitizer())

	_, err := svc.Create(context.Background(), CreateParams{Name: "既存党"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

// TestGet_NotFound は存在しない政党がNOT_FOUNDになることを検証する。
func TestGet_NotFound(t *testing.T) {
	svc := NewService(&mockPartyRepo{}, security.NewTextSanitizer())

	_, err := svc.Get(context.Background(), validUUID)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

// TestGet_InvalidUUID は不正なIDがVALIDATION_ERRORになることを検証する。
func TestGet_InvalidUUID(t *testing.T) {
	svc := NewService(&mockPartyRepo{}, security.NewTextSanitizer())

	_, err := svc.Get(context.Background(), "not-a-uuid")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

// TestList_ReturnsParties は一覧取得を検証する。
func TestList_ReturnsParties(t *testing.T) {
	repo := &mockPartyRepo{
		listFn: func(ctx context.Context) ([]*model.Party, error) {
			return []*model.Party{
				{ID: "p1", Name: "あ党"},
				{ID: "p2", Name: "い党"},
			}, nil
		},
	}
	svc := NewService(repo, security.NewTextSanitizer())

	parties, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(parties) != 2 {
		t.Errorf("len(parties) = %d, want 2", len(parties))
	}
}
